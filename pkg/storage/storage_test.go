package storage

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKey(t *testing.T) {
	assert.ErrorIs(t, validateKey(""), ErrEmptyKey)
	for _, key := range []string{"assessments/../secrets", "/assessments/a.json", "assessments//a.json", `assessments\a.json`, "assessments/"} {
		assert.ErrorIs(t, validateKey(key), ErrInvalidKey, key)
	}
	assert.NoError(t, validateKey("assessments/a/b.json"))
}

func TestContainerName(t *testing.T) {
	for _, name := range []string{"inspection-archive", "abc", "a1-b2"} {
		assert.NoError(t, (&Config{ContainerName: name}).Finalize(nil), name)
	}
	for _, name := range []string{"ab", "Archive", "-archive", "archive-", "arch--ive", "arch_ive"} {
		assert.Error(t, (&Config{ContainerName: name}).Finalize(nil), name)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, MapHTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, MapHTTPStatus(ErrDisabled))
	assert.Equal(t, http.StatusInternalServerError, MapHTTPStatus(io.ErrUnexpectedEOF))
}

func TestDisabledWithoutConnectionString(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Finalize(nil))
	assert.False(t, cfg.Enabled())
	assert.Equal(t, "inspection-archive", cfg.ContainerName)

	sys, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	err = sys.Upload(context.Background(), "k", strings.NewReader("{}"), "application/json")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Equal(t, http.StatusServiceUnavailable, MapHTTPStatus(err))

	_, err = sys.Download(context.Background(), "k")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestConfigEnvAndMerge(t *testing.T) {
	t.Setenv("TEST_STORAGE_CONTAINER", "archive-prod")
	t.Setenv("TEST_STORAGE_CONN", "UseDevelopmentStorage=true")

	cfg := &Config{}
	require.NoError(t, cfg.Finalize(&Env{
		ContainerName:    "TEST_STORAGE_CONTAINER",
		ConnectionString: "TEST_STORAGE_CONN",
	}))
	assert.Equal(t, "archive-prod", cfg.ContainerName)
	assert.True(t, cfg.Enabled())

	cfg.Merge(&Config{ContainerName: "archive-dr"})
	assert.Equal(t, "archive-dr", cfg.ContainerName)
	assert.Equal(t, "UseDevelopmentStorage=true", cfg.ConnectionString)
}

func TestAzureRejectsInvalidKeys(t *testing.T) {
	cfg := &Config{
		ContainerName:    "snapshots",
		ConnectionString: "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;",
	}

	sys, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	err = sys.Upload(context.Background(), "../escape.json", strings.NewReader("{}"), "application/json")
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.Equal(t, http.StatusBadRequest, MapHTTPStatus(err))

	_, err = sys.Download(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}
