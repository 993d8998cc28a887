package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/analytics"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

func TestAnalyticsCommand_Text(t *testing.T) {
	db := seedDB(t, twoSnapshots()...)

	out, err := execute(t, NewAnalyticsCommand(&RootOptions{Format: "text", DB: db}))
	require.NoError(t, err)

	assert.Contains(t, out, "Audits:          2")
	// ordered 25, delivered 25
	assert.Contains(t, out, "Fulfilment rate: 100%")
	assert.Contains(t, out, "Net difference:  0")
	assert.Contains(t, out, "01-01-2024")
	assert.Contains(t, out, "02-01-2024")
	assert.Contains(t, out, "Top deviations")
	assert.Contains(t, out, "Badlaken")
}

func TestAnalyticsCommand_WindowAndProduct(t *testing.T) {
	db := seedDB(t, twoSnapshots()...)

	out, err := execute(t, NewAnalyticsCommand(&RootOptions{Format: "json", DB: db}),
		"--start", "2024-01-02", "--end", "2024-01-02", "--product", "1001")
	require.NoError(t, err)

	var resp struct {
		Data analytics.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Data.TotalAudits)
	assert.Equal(t, int64(120), resp.Data.FulfilmentRate)
	require.Len(t, resp.Data.ProductTrend, 1)
	assert.Equal(t, 12.0, resp.Data.ProductTrend[0].Delivered)
}

func TestAnalyticsCommand_EmptyHistory(t *testing.T) {
	db := seedDB(t)

	out, err := execute(t, NewAnalyticsCommand(&RootOptions{Format: "text", DB: db}))
	require.NoError(t, err)
	assert.Contains(t, out, "Audits:          0")
	assert.Contains(t, out, "Fulfilment rate: 0%")
}

func TestAnalyticsCommand_ProductNotInHistory(t *testing.T) {
	db := seedDB(t, twoSnapshots()...)

	out, err := execute(t, NewAnalyticsCommand(&RootOptions{Format: "text", DB: db}), "--product", "9999")
	require.NoError(t, err)
	assert.Contains(t, out, "Product 9999")
	assert.NotContains(t, out, "No audits include this article.")
}

func TestAnalyticsCommand_ProductOutsideWindow(t *testing.T) {
	db := seedDB(t, twoSnapshots()...)

	out, err := execute(t, NewAnalyticsCommand(&RootOptions{Format: "text", DB: db}),
		"--product", "1001", "--start", "2025-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Audits:          0")
	assert.Contains(t, out, "No audits include this article.")
}

func TestAnalyticsOptions_Window(t *testing.T) {
	tests := []struct {
		name    string
		opts    AnalyticsOptions
		want    audit.Window
		wantErr string
	}{
		{
			name: "unbounded",
			opts: AnalyticsOptions{Product: audit.AllProducts},
			want: audit.Window{Product: audit.AllProducts},
		},
		{
			name: "both dates",
			opts: AnalyticsOptions{Start: "2024-03-01", End: "2024-03-31", Product: "1001"},
			want: audit.Window{
				Start:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				End:     time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
				Product: "1001",
			},
		},
		{
			name:    "bad start",
			opts:    AnalyticsOptions{Start: "01-03-2024"},
			wantErr: "--start",
		},
		{
			name:    "bad end",
			opts:    AnalyticsOptions{End: "tomorrow"},
			wantErr: "--end",
		},
		{
			name:    "end before start",
			opts:    AnalyticsOptions{Start: "2024-03-31", End: "2024-03-01"},
			wantErr: "is before",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.window()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalyticsCommand_InvalidDate(t *testing.T) {
	out, err := execute(t, NewAnalyticsCommand(&RootOptions{Format: "text", DB: seedDB(t)}), "--start", "gisteren")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "invalid window")
}
