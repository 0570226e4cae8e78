package console

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/25-26J-299/smartrose-admin/internal/adminapi"
)

const testDebounce = 20 * time.Millisecond

func janeResults() []adminapi.SearchResult {
	return []adminapi.SearchResult{{
		User:      adminapi.User{ID: "u1", FullName: "Jane Doe", Email: "jane@x.com"},
		Locations: []adminapi.Location{{ID: "l1", Name: "North", Type: "greenhouse"}},
	}}
}

func openFlow(t *testing.T, backend *mockBackend, onSuccess func()) *AddDeviceFlow {
	t.Helper()
	f := NewAddDeviceFlow(context.Background(), backend, testDebounce, onSuccess)
	f.Open()
	t.Cleanup(f.Close)
	return f
}

func waitForState(t *testing.T, f *AddDeviceFlow, want SearchState) {
	t.Helper()
	require.Eventually(t, func() bool { return f.Snapshot().State == want }, time.Second, 5*time.Millisecond)
}

func TestAddDevice_ShortQueriesNeverSearch(t *testing.T) {
	backend := &mockBackend{
		SearchApprovedUsersFunc: func(context.Context, string) ([]adminapi.SearchResult, error) {
			return janeResults(), nil
		},
	}
	f := openFlow(t, backend, nil)

	_, err := f.SetQuery("jane")
	require.NoError(t, err)
	waitForState(t, f, SearchResults)
	require.Len(t, f.Snapshot().Results, 1)

	for _, q := range []string{"j", " j ", "", "é", " 薔 "} {
		snap, err := f.SetQuery(q)
		require.NoError(t, err)
		assert.Equal(t, SearchIdle, snap.State)
		assert.Empty(t, snap.Results, "short queries clear results at once")
	}

	time.Sleep(3 * testDebounce)
	assert.Equal(t, []string{"SearchApprovedUsers:jane"}, backend.Calls())
}

func TestAddDevice_DebounceCoalescesKeystrokes(t *testing.T) {
	backend := &mockBackend{
		SearchApprovedUsersFunc: func(context.Context, string) ([]adminapi.SearchResult, error) {
			return janeResults(), nil
		},
	}
	f := NewAddDeviceFlow(context.Background(), backend, 100*time.Millisecond, nil)
	f.Open()
	defer f.Close()

	for _, q := range []string{"ja", "jan", " jane "} {
		snap, err := f.SetQuery(q)
		require.NoError(t, err)
		assert.Equal(t, SearchDebouncing, snap.State)
	}

	waitForState(t, f, SearchResults)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{"SearchApprovedUsers:jane"}, backend.Calls())
}

func TestAddDevice_StaleResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	returned := make(chan struct{})
	backend := &mockBackend{
		SearchApprovedUsersFunc: func(ctx context.Context, q string) ([]adminapi.SearchResult, error) {
			if q == "ja" {
				defer close(returned)
				<-release
				return []adminapi.SearchResult{{User: adminapi.User{ID: "stale"}}}, nil
			}
			return janeResults(), nil
		},
	}
	f := openFlow(t, backend, nil)

	_, err := f.SetQuery("ja")
	require.NoError(t, err)
	waitForState(t, f, SearchSearching)

	_, err = f.SetQuery("jane")
	require.NoError(t, err)
	waitForState(t, f, SearchResults)

	close(release)
	<-returned
	time.Sleep(3 * testDebounce)

	snap := f.Snapshot()
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "u1", snap.Results[0].UserID)
}

func TestAddDevice_SearchError(t *testing.T) {
	f := openFlow(t, &mockBackend{
		SearchApprovedUsersFunc: func(context.Context, string) ([]adminapi.SearchResult, error) {
			return nil, errors.New("Search failed")
		},
	}, nil)

	_, err := f.SetQuery("jane")
	require.NoError(t, err)
	waitForState(t, f, SearchError)
	assert.Equal(t, "Search failed", f.Snapshot().SearchError.Message)
}

func TestAddDevice_SelectAndChangeSelection(t *testing.T) {
	f := openFlow(t, &mockBackend{
		SearchApprovedUsersFunc: func(context.Context, string) ([]adminapi.SearchResult, error) {
			return janeResults(), nil
		},
	}, nil)
	_, err := f.SetQuery("jane")
	require.NoError(t, err)
	waitForState(t, f, SearchResults)

	assert.True(t, IsValidation(f.Select("u1", "nope")))
	require.NoError(t, f.Select("u1", "l1"))

	snap := f.Snapshot()
	require.NotNil(t, snap.Selection)
	assert.Equal(t, Selection{UserID: "u1", UserName: "Jane Doe", LocationID: "l1", LocationName: "North"}, *snap.Selection)
	assert.Empty(t, snap.Results, "results are hidden while a location is selected")

	require.NoError(t, f.ChangeSelection())
	snap = f.Snapshot()
	assert.Nil(t, snap.Selection)
	assert.Len(t, snap.Results, 1)
}

func TestAddDevice_SubmitValidation(t *testing.T) {
	testCases := []struct {
		name     string
		selected bool
		form     DeviceForm
		want     string
	}{
		{name: "no selection", form: DeviceForm{Name: "x", SerialNumber: "s"}, want: "Please select a user and location"},
		{name: "blank name", selected: true, form: DeviceForm{Name: "  ", SerialNumber: "s"}, want: "Please enter device name"},
		{name: "empty serial", selected: true, form: DeviceForm{Name: "INM 1", SerialNumber: ""}, want: "Please enter device serial number"},
		{name: "unknown type", selected: true, form: DeviceForm{Name: "INM 1", Type: "XYZ", SerialNumber: "s"}, want: "Please select a valid device type"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			backend := &mockBackend{
				SearchApprovedUsersFunc: func(context.Context, string) ([]adminapi.SearchResult, error) {
					return janeResults(), nil
				},
			}
			f := openFlow(t, backend, nil)
			if tc.selected {
				_, err := f.SetQuery("jane")
				require.NoError(t, err)
				waitForState(t, f, SearchResults)
				require.NoError(t, f.Select("u1", "l1"))
			}
			require.NoError(t, f.SetForm(tc.form))

			err := f.Submit(context.Background())
			assert.EqualError(t, err, tc.want)
			assert.True(t, IsValidation(err))
			assert.NotContains(t, backend.Calls(), "CreateDevice")
			assert.Equal(t, tc.want, f.Snapshot().FormError.Message)
		})
	}
}

func TestAddDevice_SubmitSuccessResetsAndNotifies(t *testing.T) {
	var created adminapi.DeviceCreate
	refreshed := 0
	backend := &mockBackend{
		SearchApprovedUsersFunc: func(context.Context, string) ([]adminapi.SearchResult, error) {
			return janeResults(), nil
		},
		CreateDeviceFunc: func(ctx context.Context, in adminapi.DeviceCreate) (*adminapi.Device, error) {
			created = in
			return &adminapi.Device{ID: "d1"}, nil
		},
	}
	f := openFlow(t, backend, func() { refreshed++ })

	_, err := f.SetQuery("jane")
	require.NoError(t, err)
	waitForState(t, f, SearchResults)
	require.NoError(t, f.Select("u1", "l1"))
	require.NoError(t, f.SetForm(DeviceForm{Name: " INM Sensor Unit 1 ", Type: "FM", SerialNumber: " SR-FM-1 "}))

	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, adminapi.DeviceCreate{
		LocationID: "l1", UserID: "u1", Name: "INM Sensor Unit 1", Type: "FM", SerialNumber: "SR-FM-1",
	}, created)
	assert.Equal(t, 1, refreshed)

	snap := f.Snapshot()
	assert.False(t, snap.Open)
	assert.Nil(t, snap.Selection)
	assert.Equal(t, DeviceForm{Type: "INM"}, snap.Form)
}

func TestAddDevice_SubmitFailureKeepsForm(t *testing.T) {
	backend := &mockBackend{
		SearchApprovedUsersFunc: func(context.Context, string) ([]adminapi.SearchResult, error) {
			return janeResults(), nil
		},
		CreateDeviceFunc: func(context.Context, adminapi.DeviceCreate) (*adminapi.Device, error) {
			return nil, &adminapi.RequestError{Status: 400, Message: "Serial number already registered"}
		},
	}
	f := openFlow(t, backend, nil)
	_, err := f.SetQuery("jane")
	require.NoError(t, err)
	waitForState(t, f, SearchResults)
	require.NoError(t, f.Select("u1", "l1"))
	require.NoError(t, f.SetForm(DeviceForm{Name: "n", SerialNumber: "s"}))

	assert.EqualError(t, f.Submit(context.Background()), "Serial number already registered")

	snap := f.Snapshot()
	assert.True(t, snap.Open)
	assert.False(t, snap.Submitting)
	assert.Equal(t, "n", snap.Form.Name)
	assert.Equal(t, "Serial number already registered", snap.FormError.Message)
}

func TestAddDevice_ClosedFlowRejectsInput(t *testing.T) {
	backend := &mockBackend{}
	f := NewAddDeviceFlow(context.Background(), backend, testDebounce, nil)

	_, err := f.SetQuery("jane")
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, f.Submit(context.Background()), ErrNotOpen)

	f.Open()
	_, err = f.SetQuery("jane")
	require.NoError(t, err)
	f.Close()

	time.Sleep(3 * testDebounce)
	assert.Empty(t, backend.Calls(), "closing disarms the pending search")
}
