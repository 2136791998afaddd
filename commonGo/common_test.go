package commonGo

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEnvFile(t *testing.T) {
	t.Run("missing file should error", func(t *testing.T) {
		err := ReadEnvFile(filepath.Join(t.TempDir(), ".env"), map[string]string{})
		assert.NotNil(t, err)
	})
	t.Run("missing key should error", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), ".env")
		require.Nil(t, os.WriteFile(envFile, []byte("OTHER_KEY=value\n"), 0600))

		err := ReadEnvFile(envFile, map[string]string{"COMMON_GO_MISSING_KEY": ""})
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "COMMON_GO_MISSING_KEY is not set")
	})
	t.Run("should work", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), ".env")
		require.Nil(t, os.WriteFile(envFile, []byte("COMMON_GO_TEST_KEY=secret\n"), 0600))

		contents := map[string]string{"COMMON_GO_TEST_KEY": ""}
		err := ReadEnvFile(envFile, contents)
		require.Nil(t, err)
		assert.Equal(t, "secret", contents["COMMON_GO_TEST_KEY"])
	})
	t.Run("the process environment is not modified", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), ".env")
		require.Nil(t, os.WriteFile(envFile, []byte("COMMON_GO_FILE_ONLY_KEY=secret\n"), 0600))

		contents := map[string]string{"COMMON_GO_FILE_ONLY_KEY": ""}
		require.Nil(t, ReadEnvFile(envFile, contents))
		assert.Equal(t, "secret", contents["COMMON_GO_FILE_ONLY_KEY"])
		assert.Empty(t, os.Getenv("COMMON_GO_FILE_ONLY_KEY"))
	})
	t.Run("a key missing from the file falls back to the environment", func(t *testing.T) {
		t.Setenv("COMMON_GO_ENV_KEY", "from-env")

		envFile := filepath.Join(t.TempDir(), ".env")
		require.Nil(t, os.WriteFile(envFile, []byte("OTHER_KEY=value\n"), 0600))

		contents := map[string]string{"COMMON_GO_ENV_KEY": ""}
		require.Nil(t, ReadEnvFile(envFile, contents))
		assert.Equal(t, "from-env", contents["COMMON_GO_ENV_KEY"])
	})
}

func TestAttachFileLogger(t *testing.T) {
	t.Parallel()

	log := logger.GetOrCreate("test")

	t.Run("nil logger should error", func(t *testing.T) {
		t.Parallel()

		handler, err := AttachFileLogger(ArgsFileLogger{})
		assert.NotNil(t, err)
		assert.Nil(t, handler)
	})
	t.Run("not saving should return a nil handler", func(t *testing.T) {
		t.Parallel()

		handler, err := AttachFileLogger(ArgsFileLogger{
			Log:             log,
			DefaultLogsPath: "logs",
			LogFilePrefix:   "test",
			WorkingDir:      t.TempDir(),
		})
		assert.Nil(t, err)
		assert.Nil(t, handler)
	})
	t.Run("saving should create the log file", func(t *testing.T) {
		t.Parallel()

		workingDir := t.TempDir()
		handler, err := AttachFileLogger(ArgsFileLogger{
			Log:             log,
			DefaultLogsPath: "logs",
			LogFilePrefix:   "test",
			SaveLogFile:     true,
			WorkingDir:      workingDir,
			LifeSpanInSec:   3600,
			LifeSpanInMB:    10,
		})
		require.Nil(t, err)
		require.NotNil(t, handler)
		defer func() {
			_ = handler.Close()
		}()

		entries, err := os.ReadDir(filepath.Join(workingDir, "logs"))
		require.Nil(t, err)
		assert.NotEmpty(t, entries)
	})
}

func TestCronJobStarter(t *testing.T) {
	t.Parallel()

	calls := int32(0)
	ctx, cancel := context.WithCancel(context.Background())

	CronJobStarter(ctx, func(ctx context.Context) {
		atomic.AddInt32(&calls, 1)
	}, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(50 * time.Millisecond)
	stopped := atomic.LoadInt32(&calls)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, atomic.LoadInt32(&calls))
}
