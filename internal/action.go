package internal

// Action is a terminal consumer of boolean states. It is fire-and-forget.
type Action func(bool)

// All invokes every action in order with the same value. Nil actions are skipped.
func All(actions ...Action) Action {
	return func(v bool) {
		for _, action := range actions {
			if action != nil {
				action(v)
			}
		}
	}
}

// Alt invokes action with the inverse of the value.
func Alt(action Action) Action {
	return func(v bool) {
		if action != nil {
			action(!v)
		}
	}
}
