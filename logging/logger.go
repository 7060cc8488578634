package logging

// Log emits a structured line at level if a logger has been installed
// with Setup; it's a silent no-op before Setup runs or under
// LogLevelNone.
func Log(level LogLevel, msg string, args ...any) {
	if logger == nil {
		return
	}
	switch level {
	case LogLevelDebug:
		logger.Debug(msg, args...)
	case LogLevelInfo:
		logger.Info(msg, args...)
	default:
		panic("Log only accepts LogLevelDebug or LogLevelInfo; pass --loglevel=none to Setup to silence logging entirely")
	}
}

// LogErr reports a pipeline failure (a lex/compile/run error that's
// about to abort the CLI command) without panicking the logger itself.
func LogErr(err error, msg string) {
	if err == nil || logger == nil {
		return
	}
	logger.Error(msg, "error", err.Error())
}

// Phase logs entry into one stage of the lex -> compile -> run
// pipeline, naming the source file being processed.
func Phase(name, file string) {
	Log(LogLevelInfo, "phase start", "phase", name, "file", file)
}

// EnterVerse logs a function activation: [Chorus], [Intro], or a named
// Verse, at the given call depth.
func EnterVerse(name string, depth int) {
	Log(LogLevelDebug, "verse enter", "verse", name, "depth", depth)
}

// ExitVerse logs a function activation unwinding, noting whether it
// failed.
func ExitVerse(name string, depth int, failed bool) {
	Log(LogLevelDebug, "verse exit", "verse", name, "depth", depth, "failed", failed)
}
