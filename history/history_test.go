package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-gym-client/history"
	fakehistoryrepo "github.com/jrsteele09/go-gym-client/history/repofake"
	"github.com/jrsteele09/go-gym-client/server/servertest"
	"github.com/jrsteele09/go-gym-client/sessions"
	"github.com/jrsteele09/go-gym-client/transport"
	"github.com/stretchr/testify/require"
)

func TestGroupByDay(t *testing.T) {
	day1 := time.Date(2024, 3, 9, 22, 30, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 10, 8, 5, 0, 0, time.UTC)
	records := []history.Record{
		{ID: 1, Name: "Puxada frontal", CreatedAt: day1},
		{ID: 2, Name: "Remada curvada", CreatedAt: day2},
		{ID: 3, Name: "Leg press 45", CreatedAt: day2.Add(time.Hour)},
	}

	days := history.GroupByDay(records, time.UTC)
	require.Len(t, days, 2)
	require.Equal(t, "10.03.2024", days[0].Title)
	require.Equal(t, int64(3), days[0].Data[0].ID)
	require.Equal(t, "09:05", days[0].Data[0].Hour)
	require.Equal(t, "08:05", days[0].Data[1].Hour)
	require.Equal(t, "09.03.2024", days[1].Title)

	// The original slice is left alone
	require.Empty(t, records[0].Hour)
}

func TestGroupByDay_Location(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	records := []history.Record{
		{ID: 1, CreatedAt: time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)},
		{ID: 2, CreatedAt: time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC)},
	}

	days := history.GroupByDay(records, saoPaulo)
	require.Len(t, days, 2)
	require.Equal(t, "10.03.2024", days[0].Title)
	require.Equal(t, "01:00", days[0].Data[0].Hour)
	require.Equal(t, "09.03.2024", days[1].Title)
	require.Equal(t, "22:00", days[1].Data[0].Hour)

	require.Empty(t, history.GroupByDay(nil, nil))
}

func TestFakeHistoryRepo_ListByUser(t *testing.T) {
	repo := fakehistoryrepo.NewFakeHistoryRepo()
	require.NoError(t, repo.Add(&history.Record{UserID: 1, Name: "a"}))
	require.NoError(t, repo.Add(&history.Record{UserID: 2, Name: "b"}))
	require.NoError(t, repo.Add(&history.Record{UserID: 1, Name: "c"}))

	list, err := repo.ListByUser(1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.False(t, list[0].CreatedAt.IsZero())
	require.NotEqual(t, list[0].ID, list[1].ID)

	list, err = repo.ListByUser(3)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestClient_RegisterAndByDay(t *testing.T) {
	stub := servertest.New(t)
	c, err := transport.New(stub.URL)
	require.NoError(t, err)
	signedIn, err := sessions.NewClient(c).SignIn(context.Background(), servertest.DemoEmail, servertest.DemoPassword)
	require.NoError(t, err)
	c.SetAuthorization(signedIn.Token)

	list, err := stub.Repos.Exercises.ByGroup("pernas")
	require.NoError(t, err)
	require.Len(t, list, 1)

	client := history.NewClient(c)
	require.Error(t, client.Register(context.Background(), 0))
	require.NoError(t, client.Register(context.Background(), list[0].ID))

	days, err := client.ByDay(context.Background())
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Len(t, days[0].Data, 1)
	require.Equal(t, "Leg press 45", days[0].Data[0].Name)
	require.Equal(t, "pernas", days[0].Data[0].Group)

	err = client.Register(context.Background(), 9999)
	require.Error(t, err)
}
