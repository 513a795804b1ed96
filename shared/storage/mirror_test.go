package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vesla0x1/codegrabber/shared/config"
	obsmocks "github.com/vesla0x1/codegrabber/shared/observability/mocks"
	"github.com/vesla0x1/codegrabber/shared/storage/adapters/fs"
	"github.com/vesla0x1/codegrabber/shared/storage/mocks"
	"github.com/vesla0x1/codegrabber/shared/storage/types"
)

func seedWorkspace(t *testing.T) *fs.Workspace {
	t.Helper()
	ctx := context.Background()

	ws, err := fs.NewWorkspace(t.TempDir(), obsmocks.NewNopLogger(), obsmocks.NewNopMetrics())
	require.NoError(t, err)

	for id, body := range map[string]string{
		"style.css": "body{}",
		"index.php": "<?php",
		"inc/a.php": "",
	} {
		_, err := ws.EnsureFile(ctx, "mytheme", id)
		require.NoError(t, err)
		if body != "" {
			_, err = ws.Append(ctx, "mytheme", id, []byte(body))
			require.NoError(t, err)
		}
	}
	return ws
}

func TestMirror_OneObjectPerFile(t *testing.T) {
	ws := seedWorkspace(t)
	sink := new(mocks.MockObjectSink)
	sink.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	stored, err := Mirror(context.Background(), ws, sink, "mytheme", "runs/1")

	require.NoError(t, err)
	assert.Equal(t, 3, stored)
	sink.AssertNumberOfCalls(t, "Put", 3)
	assert.Equal(t, map[string]string{
		"runs/1/mytheme/inc/a.php": "",
		"runs/1/mytheme/index.php": "<?php",
		"runs/1/mytheme/style.css": "body{}",
	}, sink.Bodies)

	sink.AssertCalled(t, "Put", mock.Anything, "runs/1/mytheme/style.css", mock.MatchedBy(func(m types.ObjectMetadata) bool {
		return m.ContentLength == 6 && m.UserMetadata["container"] == "mytheme"
	}))
}

func TestMirror_StopsOnFirstFailure(t *testing.T) {
	ws := seedWorkspace(t)
	sink := new(mocks.MockObjectSink)
	sink.On("Put", mock.Anything, "mytheme/inc/a.php", mock.Anything).Return(nil)
	sink.On("Put", mock.Anything, "mytheme/index.php", mock.Anything).Return(errors.New("throttled"))

	stored, err := Mirror(context.Background(), ws, sink, "mytheme", "")

	require.Error(t, err)
	assert.Equal(t, 1, stored)
	sink.AssertNotCalled(t, "Put", mock.Anything, "mytheme/style.css", mock.Anything)
}

func TestMirror_MissingContainer(t *testing.T) {
	ws := seedWorkspace(t)

	_, err := Mirror(context.Background(), ws, new(mocks.MockObjectSink), "Plugins", "")

	assert.ErrorIs(t, err, types.ErrObjectNotFound)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "mytheme/a/b.php", ObjectKey("", "mytheme", "a/b.php"))
	assert.Equal(t, "exports/Plugins/x.js", ObjectKey("exports/", "Plugins", "x.js"))
}

func TestNewExporter_Disabled(t *testing.T) {
	sink, err := NewExporter(context.Background(), &config.Config{}, obsmocks.NewNopLogger(), obsmocks.NewNopMetrics())

	require.NoError(t, err)
	assert.Nil(t, sink)
}

func TestNewWorkspace_UsesOutputDir(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Harvest: config.HarvestConfig{OutputDir: dir}}

	ws, err := NewWorkspace(cfg, obsmocks.NewNopLogger(), obsmocks.NewNopMetrics())

	require.NoError(t, err)
	assert.Equal(t, dir, ws.Root())
}
