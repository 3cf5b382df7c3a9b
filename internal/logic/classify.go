package logic

// Classify maps a snapshot to a single command. The checks run in a fixed
// priority order and the first match wins, so the button beats any axis and
// the Y axis beats the X axis.
func Classify(s Snapshot, th Thresholds, v Variant) Command {
	switch {
	case s.Button:
		return CommandSelect
	case s.Y < th.Low:
		return CommandUp
	case s.Y > th.High:
		return CommandDown
	case s.X < th.Low:
		if v.LeftAsSelect {
			return CommandSelect
		}
		return CommandLeft
	case s.X > th.High:
		return CommandRight
	}
	return CommandCenter
}

// IsActive reports whether a classified sample counts as operator activity.
// CENTER never does. A SELECT produced only by the button counts when the
// variant says a held button is activity.
func IsActive(cmd Command, s Snapshot, th Thresholds, v Variant) bool {
	if cmd == CommandCenter {
		return false
	}
	if s.Button && !v.ButtonIsActivity {
		// Button held: only a deflected axis keeps us awake.
		return Classify(Snapshot{X: s.X, Y: s.Y}, th, v) != CommandCenter
	}
	return true
}

// Clamp limits a raw axis value to 0..AxisMax.
func Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > AxisMax {
		return AxisMax
	}
	return v
}
