// Package log provides the printf-style Logger used throughout the research agent.
//
// Two implementations are provided: DefaultLogger on top of the standard
// library log package, and GologLogger on top of github.com/kataras/golog,
// which is what the binaries install. Components accept a Logger and fall
// back to the package-level default when given nil.
//
//	logger := log.New(os.Stderr, log.LogLevelDebug)
//	log.SetDefaultLogger(logger)
//	log.Info("state saved to s3://%s/%s", bucket, key)
//
// On Lambda everything written to stderr ends up in CloudWatch Logs.
package log
