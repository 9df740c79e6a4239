package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glorpus-work/aurseek/pkg/aur"
	aurmocks "github.com/glorpus-work/aurseek/pkg/aur/mocks"
	"github.com/glorpus-work/aurseek/pkg/errors"
	"github.com/glorpus-work/aurseek/pkg/history"
	histmocks "github.com/glorpus-work/aurseek/pkg/history/mocks"
	"github.com/glorpus-work/aurseek/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newMockSession(t *testing.T) (*Session, *aurmocks.MockClient, *histmocks.MockStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := aurmocks.NewMockClient(ctrl)
	hist := histmocks.NewMockStore(ctrl)
	return New(client, hist), client, hist
}

func TestSearch_Success(t *testing.T) {
	sess, client, _ := newMockSession(t)
	query := aur.Query{Text: "firefox", Mode: aur.ModePackage}
	resp := &aur.Response{ResultCount: 1, Results: []aur.PackageSummary{{Name: "firefox", Version: "120.0"}}}
	client.EXPECT().Lookup(gomock.Any(), query).Return(aur.Success(resp)).Times(1)

	status, err := sess.Search(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, aur.Success(resp), status)

	// Same query again is served from the store without a lookup.
	status, err = sess.Search(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, aur.Success(resp), status)
}

func TestSearch_TimeoutLeavesHistoryUntouched(t *testing.T) {
	srv := testutil.NewAURServer(t, testutil.Package("firefox", "120.0-1", "alice"))
	srv.SetDelay(time.Second)
	client, err := aur.NewHTTPClient(srv.URL, 50*time.Millisecond)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	hist := histmocks.NewMockStore(ctrl) // no calls expected
	sess := New(client, hist)

	status, err := sess.Search(context.Background(), aur.Query{Text: "firefox"})
	require.NoError(t, err)
	require.Equal(t, aur.StatusFailure, status.Kind)
	assert.Contains(t, status.Message, "timed out")
	_, selected := sess.Selection().Current()
	assert.False(t, selected)
}

func TestSearch_DefaultMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := aurmocks.NewMockClient(ctrl)
	sess := New(client, histmocks.NewMockStore(ctrl), WithDefaultMode(aur.ModeUser))

	assert.Equal(t, aur.ModeUser, sess.SearchStore().Query().Mode)
	assert.NotEmpty(t, sess.ID())
}

func TestSelect_AppendsThenSelects(t *testing.T) {
	sess, _, hist := newMockSession(t)
	pkg := aur.PackageSummary{Name: "yay", Version: "12.3.5-1"}
	hist.EXPECT().Append(gomock.Any(), pkg).Return(history.Entry{ID: 7, Package: pkg}, nil)

	entry, err := sess.Select(context.Background(), pkg)
	require.NoError(t, err)
	assert.Equal(t, int64(7), entry.ID)

	item, ok := sess.Selection().Current()
	require.True(t, ok)
	assert.Equal(t, "yay", item.Summary().Name)
}

func TestSelect_PersistenceErrorPropagates(t *testing.T) {
	sess, _, hist := newMockSession(t)
	previous := aur.PackageSummary{Name: "paru"}
	failing := aur.PackageSummary{Name: "yay"}
	gomock.InOrder(
		hist.EXPECT().Append(gomock.Any(), previous).Return(history.Entry{ID: 1}, nil),
		hist.EXPECT().Append(gomock.Any(), failing).
			Return(history.Entry{}, errors.WithKind(errors.ErrPersistence, fmt.Errorf("disk I/O error"))),
	)

	_, err := sess.Select(context.Background(), previous)
	require.NoError(t, err)

	_, err = sess.Select(context.Background(), failing)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrPersistence)
	assert.Contains(t, err.Error(), "yay")

	item, ok := sess.Selection().Current()
	require.True(t, ok)
	assert.Equal(t, "paru", item.Summary().Name, "failed selection must not replace the current one")
}

func TestInspect(t *testing.T) {
	sess, client, _ := newMockSession(t)
	detail := aur.PackageDetail{
		PackageSummary: aur.PackageSummary{Name: "yay", Version: "12.3.5-1"},
		Depends:        []string{"pacman"},
	}
	client.EXPECT().Info(gomock.Any(), "yay").Return([]aur.PackageDetail{detail}, nil)
	client.EXPECT().Info(gomock.Any(), "missing").Return([]aur.PackageDetail{}, nil)

	got, err := sess.Inspect(context.Background(), "yay")
	require.NoError(t, err)
	assert.Equal(t, detail, got)

	selected, ok := sess.Selection().Detail()
	require.True(t, ok)
	assert.Equal(t, []string{"pacman"}, selected.Depends)

	_, err = sess.Inspect(context.Background(), "missing")
	assert.ErrorIs(t, err, aur.ErrPackageNotFound)
	assert.ErrorIs(t, err, errors.ErrApplication)
}

func TestSelectName(t *testing.T) {
	sess, client, hist := newMockSession(t)
	detail := aur.PackageDetail{PackageSummary: aur.PackageSummary{Name: "yay", Version: "12.3.5-1"}}
	client.EXPECT().Info(gomock.Any(), "yay").Return([]aur.PackageDetail{detail}, nil)
	hist.EXPECT().Append(gomock.Any(), detail.PackageSummary).Return(history.Entry{ID: 3, Package: detail.PackageSummary}, nil)

	got, entry, err := sess.SelectName(context.Background(), "yay")
	require.NoError(t, err)
	assert.Equal(t, "yay", got.Name)
	assert.Equal(t, int64(3), entry.ID)
}

func TestOutdated(t *testing.T) {
	sess, client, _ := newMockSession(t)
	entries := []history.Entry{
		{ID: 3, Package: aur.PackageSummary{Name: "yay", Version: "12.3.5-1"}},
		{ID: 2, Package: aur.PackageSummary{Name: "paru", Version: "2.0.4-1"}},
		{ID: 1, Package: aur.PackageSummary{Name: "yay", Version: "11.0.0-1"}},
		{ID: 0, Package: aur.PackageSummary{Name: "gone", Version: "1-1"}},
	}
	client.EXPECT().Info(gomock.Any(), "yay", "paru", "gone").Return([]aur.PackageDetail{
		{PackageSummary: aur.PackageSummary{Name: "yay", Version: "12.3.5-1"}},
		{PackageSummary: aur.PackageSummary{Name: "paru", Version: "2.1.0-1"}},
	}, nil)

	updates, err := sess.Outdated(context.Background(), entries)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, "paru", updates[0].Entry.Package.Name)
	assert.Equal(t, "2.1.0-1", updates[0].Latest)

	updates, err = sess.Outdated(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestClose(t *testing.T) {
	sess, _, hist := newMockSession(t)
	hist.EXPECT().Close().Return(nil).Times(1)

	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())

	_, err := sess.Search(context.Background(), aur.Query{Text: "yay"})
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = sess.Select(context.Background(), aur.PackageSummary{Name: "yay"})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_WithSQLiteHistory(t *testing.T) {
	srv := testutil.NewAURServer(t, testutil.Package("firefox", "120.0-1", "alice"))
	client, err := aur.NewHTTPClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	hist, err := history.Open(history.MemoryPath)
	require.NoError(t, err)

	sess := New(client, hist)
	defer sess.Close()
	ctx := context.Background()

	status, err := sess.Search(ctx, aur.Query{Text: "fire"})
	require.NoError(t, err)
	require.Len(t, status.Results(), 1)

	_, err = sess.Select(ctx, status.Results()[0])
	require.NoError(t, err)
	_, err = sess.Select(ctx, status.Results()[0])
	require.NoError(t, err)

	entries, err := sess.History().All(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 1, srv.SearchCount())
}
