package system

// Logger matches app.Logger.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

func logResult(l Logger, err error, ok, failed string) error {
	if l == nil {
		return err
	}
	if err != nil {
		l.Errorf("tty", "%s: %v", failed, err)
	} else {
		l.Infof("tty", "%s", ok)
	}
	return err
}

func SetGraphicsModeWithLog(l Logger) error {
	return logResult(l, SetGraphicsMode(), "KD_GRAPHICS set", "KD_GRAPHICS failed")
}

func RestoreTextModeWithLog(l Logger) error {
	return logResult(l, RestoreTextMode(), "KD_TEXT set", "KD_TEXT failed")
}

func HideCursorWithLog(l Logger) error {
	return logResult(l, HideCursor(), "cursor hidden", "hide cursor failed")
}

func ShowCursorWithLog(l Logger) error {
	return logResult(l, ShowCursor(), "cursor shown", "show cursor failed")
}
