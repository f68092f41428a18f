package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// staticFields добавляет постоянные поля к каждой записи, не перезаписывая заданные явно
type staticFields logrus.Fields

func (h staticFields) Levels() []logrus.Level { return logrus.AllLevels }

func (h staticFields) Fire(entry *logrus.Entry) error {
	for k, v := range h {
		if _, ok := entry.Data[k]; !ok {
			entry.Data[k] = v
		}
	}
	return nil
}

// New создает логгер процесса. format: "json" (по умолчанию) или "text".
// app попадает в поле "app" каждой записи, чтобы различать API и ингестор.
func New(app, logLevel, format string) *logrus.Logger {
	return newLogger(os.Stdout, app, logLevel, format)
}

func newLogger(out io.Writer, app, logLevel, format string) *logrus.Logger {
	log := logrus.New()

	if strings.EqualFold(format, "text") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	log.SetOutput(out)

	// Уровень логирования
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel // Уровень по умолчанию, если передан некорректный
	}
	log.SetLevel(level)

	if app != "" {
		log.AddHook(staticFields{"app": app})
	}
	return log
}
