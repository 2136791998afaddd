package commonGo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/multiversx/mx-chain-logger-go/file"
)

// ArgsFileLogger is the DTO used to attach a rotating log file
type ArgsFileLogger struct {
	Log             logger.Logger
	DefaultLogsPath string
	LogFilePrefix   string
	SaveLogFile     bool
	WorkingDir      string
	LifeSpanInSec   uint32
	LifeSpanInMB    uint64
}

// AttachFileLogger attaches, if required, a log file rotated by the provided life spans.
// It returns a nil handler when the logs are not saved
func AttachFileLogger(args ArgsFileLogger) (FileLoggingHandler, error) {
	if args.Log == nil {
		return nil, errors.New("nil logger")
	}

	err := logger.SetDisplayByteSlice(logger.ToHex)
	args.Log.LogIfError(err)

	if !args.SaveLogFile {
		return nil, nil
	}

	logFile, err := file.NewFileLogging(file.ArgsFileLogging{
		WorkingDir:      args.WorkingDir,
		DefaultLogsPath: args.DefaultLogsPath,
		LogFilePrefix:   args.LogFilePrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("%w creating a log file", err)
	}

	if args.LifeSpanInSec > 0 && args.LifeSpanInMB > 0 {
		err = logFile.ChangeFileLifeSpan(time.Second*time.Duration(args.LifeSpanInSec), args.LifeSpanInMB)
		if err != nil {
			_ = logFile.Close()
			return nil, err
		}
	}

	return logFile, nil
}

// ReadEnvFile fills the provided keys from the .env file. A key missing from the file falls back to
// the process environment; a key found in neither is an error
func ReadEnvFile(envFile string, m map[string]string) error {
	values, err := godotenv.Read(envFile)
	if err != nil {
		return err
	}

	for k := range m {
		val := values[k]
		if len(val) == 0 {
			val = os.Getenv(k)
		}
		if len(val) == 0 {
			return fmt.Errorf("%s is not set in the .env file", k)
		}

		m[k] = val
	}

	return nil
}

// CronJobStarter starts a go routine calling the handler right away, then every timeToCall until
// the context is done
func CronJobStarter(ctx context.Context, handler func(ctx context.Context), timeToCall time.Duration) {
	go func() {
		ticker := time.NewTicker(timeToCall)
		defer ticker.Stop()

		handler(ctx)

		for {
			select {
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				handler(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}
