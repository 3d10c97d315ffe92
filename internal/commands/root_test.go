package commands

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thablackcodes/gresh-finance/internal/buildinfo"
	"github.com/thablackcodes/gresh-finance/internal/config"
)

func TestRootCommand_Version(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), buildinfo.String())
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"serve", "migrate"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORAGE", config.StorageMemory)

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"migrate"})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires postgres storage")
}

func TestOpenStorage_Memory(t *testing.T) {
	cfg := config.Default()
	cfg.Storage = config.StorageMemory
	log, _ := test.NewNullLogger()

	store, err := openStorage(testContext(t), cfg, log)
	require.NoError(t, err)
	defer store.close()

	assert.NoError(t, store.pinger.Ping(testContext(t)))
}

func TestOpenPublisher(t *testing.T) {
	cfg := config.Default()
	log, _ := test.NewNullLogger()

	publisher, closeFn, err := openPublisher(cfg, log)
	require.NoError(t, err)
	assert.Nil(t, publisher)
	closeFn()

	cfg.Events.Broker = config.BrokerKafka
	publisher, closeFn, err = openPublisher(cfg, log)
	require.NoError(t, err)
	assert.NotNil(t, publisher)
	closeFn()

	cfg.Events.Broker = "nats"
	_, _, err = openPublisher(cfg, log)
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// testContext returns a context canceled when the test finishes
// (equivalent of testing.T.Context, which requires Go 1.24).
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
