package archive_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golift.io/pipelogger/archive"
	"golift.io/pipelogger/mocks"
)

// testHistory makes a history of count archives, one second apart, oldest first.
func testHistory(layout *archive.Layout, count int) *archive.History {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	list := &archive.History{}

	for idx := 0; idx < count; idx++ {
		rec, _ := layout.Parse(layout.ArchiveName(start.Add(time.Duration(idx) * time.Second)))
		list.Append(rec)
	}

	return list
}

func TestRetain(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFiler := mocks.NewMockFiler(mockCtrl)
	layout := archive.NewLayout(filepath.Join("/", "var", "log", "app.log"), ".xz", mockFiler)
	list := testHistory(layout, 5)
	names := list.Names()

	// maxCount 3 keeps 2 archives: the three oldest go.
	for _, name := range names[:3] {
		mockFiler.EXPECT().Remove(filepath.Join(layout.Dir, name)).Return(os.ErrNotExist)
		mockFiler.EXPECT().Remove(filepath.Join(layout.Dir, name+".xz"))
	}

	gone := layout.Retain(list, 3)
	assert.Len(gone, 3)
	assert.Equal(names[0], gone[0].Name, "the oldest archive must go first")
	assert.Equal(names[3:], list.Names(), "the newest archives must be kept")
	assert.Less(list.Len(), 3)
}

func TestRetainUnlimited(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	// No Remove calls are expected.
	layout := archive.NewLayout("/var/log/app.log", ".xz", mocks.NewMockFiler(mockCtrl))
	list := testHistory(layout, 4)

	assert.Empty(layout.Retain(list, 0))
	assert.Equal(4, list.Len())

	assert.Empty(layout.Retain(list, 5), "below the limit nothing is removed")
	assert.Equal(4, list.Len())
}

func TestRetainOne(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFiler := mocks.NewMockFiler(mockCtrl)
	layout := archive.NewLayout("/var/log/app.log", ".xz", mockFiler)
	list := testHistory(layout, 2)

	mockFiler.EXPECT().Remove(gomock.Any()).Return(errTest).Times(4)

	assert.Len(layout.Retain(list, 1), 2, "a count of one keeps no archives")
	assert.Equal(0, list.Len())
}

func TestRetainFiles(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	dir := t.TempDir()
	layout := archive.NewLayout(filepath.Join(dir, "app.log"), ".xz", nil)
	list := testHistory(layout, 3)
	names := list.Names()

	require.NoError(t, os.WriteFile(layout.Path(names[0]), nil, 0o600))
	require.NoError(t, os.WriteFile(layout.Path(names[1]+".xz"), nil, 0o600))
	require.NoError(t, os.WriteFile(layout.Path(names[2]), nil, 0o600))

	layout.Retain(list, 2)
	assert.NoFileExists(layout.Path(names[0]))
	assert.NoFileExists(layout.Path(names[1] + ".xz"))
	assert.FileExists(layout.Path(names[2]))

	reloaded, err := layout.Load()
	assert.NoError(err)
	assert.Equal(list.Names(), reloaded.Names())
}
