package loggers

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-custody/pkg/repo"
)

const (
	API            = "api"
	App            = "app"
	Executor       = "executor"
	Ledger         = "ledger"
	Storage        = "storage"
	SystemContract = "system_contract"
)

var w = &LoggerWrapper{
	loggers: map[string]*logrus.Entry{
		API:            newWithModule(API, os.Stderr, defaultFormatter(), logrus.InfoLevel, false),
		App:            newWithModule(App, os.Stderr, defaultFormatter(), logrus.InfoLevel, false),
		Executor:       newWithModule(Executor, os.Stderr, defaultFormatter(), logrus.InfoLevel, false),
		Ledger:         newWithModule(Ledger, os.Stderr, defaultFormatter(), logrus.InfoLevel, false),
		Storage:        newWithModule(Storage, os.Stderr, defaultFormatter(), logrus.InfoLevel, false),
		SystemContract: newWithModule(SystemContract, os.Stderr, defaultFormatter(), logrus.InfoLevel, false),
	},
}

type LoggerWrapper struct {
	loggers map[string]*logrus.Entry
}

func defaultFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000",
	}
}

func newWithModule(name string, out io.Writer, formatter logrus.Formatter, level logrus.Level, reportCaller bool) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(formatter)
	l.SetLevel(level)
	l.SetReportCaller(reportCaller)
	return l.WithField("module", name)
}

// ParseLevel falls back to info on an empty or unknown level.
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Initialize rebuilds every module logger from the repo config, persist
// additionally writes to <repo>/logs/<filename>.log until ctx is done.
func Initialize(ctx context.Context, rep *repo.Repo, persist bool) error {
	config := rep.Config.Log

	var out io.Writer = os.Stderr
	if persist {
		logDir := filepath.Join(rep.RepoRoot, repo.LogsDirName)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return errors.Wrap(err, "log initialize: create log dir")
		}
		f, err := os.OpenFile(filepath.Join(logDir, config.Filename+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return errors.Wrap(err, "log initialize: open log file")
		}
		go func() {
			<-ctx.Done()
			_ = f.Close()
		}()
		out = io.MultiWriter(os.Stderr, f)
	}

	formatter := &logrus.TextFormatter{
		ForceColors:      config.EnableColor,
		DisableColors:    !config.EnableColor,
		DisableTimestamp: config.DisableTimestamp,
		FullTimestamp:    true,
		TimestampFormat:  "2006-01-02T15:04:05.000",
	}

	levels := map[string]string{
		API:            config.Module.API,
		App:            config.Level,
		Executor:       config.Module.Executor,
		Ledger:         config.Module.Ledger,
		Storage:        config.Module.Storage,
		SystemContract: config.Module.SystemContract,
	}
	m := make(map[string]*logrus.Entry, len(levels))
	for name, level := range levels {
		if level == "" {
			level = config.Level
		}
		m[name] = newWithModule(name, out, formatter, ParseLevel(level), config.ReportCaller)
	}

	w = &LoggerWrapper{loggers: m}
	return nil
}

func Logger(name string) logrus.FieldLogger {
	if l, ok := w.loggers[name]; ok {
		return l
	}
	return w.loggers[App].WithField("module", name)
}
