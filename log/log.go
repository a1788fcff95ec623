package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

func InitLog(logPath string) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if logPath == "" {
		logrus.SetOutput(os.Stdout)
		return
	}

	file, err := os.OpenFile(logPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		logrus.Fatalf("open log file %s is err: %v", logPath, err)
	}
	mw := io.MultiWriter(os.Stdout, file)
	logrus.SetOutput(mw)
}
