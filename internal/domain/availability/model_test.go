package availability_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"itgportal/internal/domain/availability"
	"itgportal/internal/domain/civildate"
)

// TestRecord_Validate tests validation of Record.
func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rec     availability.Record
		wantErr error
	}{
		{
			name: "valid off day",
			rec:  availability.Record{CoachID: "c1", Date: "2024-03-01", Status: availability.StatusOff, Reason: "flu"},
		},
		{
			name: "valid available day",
			rec:  availability.Record{CoachID: "c1", Date: "2024-03-01", Status: availability.StatusAvailable},
		},
		{
			name:    "missing coach",
			rec:     availability.Record{Date: "2024-03-01", Status: availability.StatusOff},
			wantErr: availability.ErrEmptyCoachID,
		},
		{
			name:    "bad date",
			rec:     availability.Record{CoachID: "c1", Date: "2024-3-1", Status: availability.StatusOff},
			wantErr: civildate.ErrInvalidDateFormat,
		},
		{
			name:    "unknown status",
			rec:     availability.Record{CoachID: "c1", Date: "2024-03-01", Status: "busy"},
			wantErr: availability.ErrInvalidStatus,
		},
		{
			name:    "reason too long",
			rec:     availability.Record{CoachID: "c1", Date: "2024-03-01", Status: availability.StatusSick, Reason: strings.Repeat("x", 501)},
			wantErr: availability.ErrReasonTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestIsTimeOff flags every non-available status.
func TestIsTimeOff(t *testing.T) {
	for _, s := range availability.Statuses {
		want := s != availability.StatusAvailable
		if got := availability.IsTimeOff(s); got != want {
			t.Errorf("IsTimeOff(%q) = %v, want %v", s, got, want)
		}
	}
}

// TestFromDocument normalises loosely shaped documents.
func TestFromDocument(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		doc     map[string]any
		want    availability.Record
		wantErr bool
	}{
		{
			name: "plain document",
			doc:  map[string]any{"coachId": "c1", "date": "2024-03-01", "status": "off", "reason": " flu ", "createdAt": created},
			want: availability.Record{ID: "d1", CoachID: "c1", Date: "2024-03-01", Status: "off", Reason: "flu", CreatedAt: created},
		},
		{
			name: "timestamp date and upper-case status",
			doc:  map[string]any{"coachId": "c1", "date": "2024-03-01T15:00:00Z", "status": "SICK"},
			want: availability.Record{ID: "d1", CoachID: "c1", Date: "2024-03-01", Status: "sick"},
		},
		{
			name: "time value date and missing status",
			doc:  map[string]any{"coachId": "c1", "date": created},
			want: availability.Record{ID: "d1", CoachID: "c1", Date: "2024-03-01", Status: "available"},
		},
		{
			name:    "numeric date",
			doc:     map[string]any{"coachId": "c1", "date": 20240301, "status": "off"},
			wantErr: true,
		},
		{
			name:    "unknown status",
			doc:     map[string]any{"coachId": "c1", "date": "2024-03-01", "status": "remote"},
			wantErr: true,
		},
		{
			name:    "missing coach",
			doc:     map[string]any{"date": "2024-03-01", "status": "off"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := availability.FromDocument("d1", tt.doc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromDocument() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("FromDocument() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestToPeriodRecords drops storage fields.
func TestToPeriodRecords(t *testing.T) {
	recs := []availability.Record{{ID: "x", CoachID: "c1", Date: "2024-03-01", Status: "off", Reason: "flu"}}
	got := availability.ToPeriodRecords(recs)
	if len(got) != 1 || got[0].Date != "2024-03-01" || got[0].Status != "off" || got[0].Reason != "flu" {
		t.Errorf("ToPeriodRecords() = %+v", got)
	}
}
