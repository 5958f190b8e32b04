package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/periodvault/internal/common"
)

func TestAccountDoc_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want AccountDoc
	}{
		{
			name: "v2 ciphertext amount",
			in:   `{"id":"a1","name":"b64ct","amount":"b64ct2","percentage":null,"baseValue":100,"baseSet":true}`,
			want: AccountDoc{ID: "a1", Name: "b64ct", Amount: "b64ct2", BaseValue: 100, BaseSet: true},
		},
		{
			name: "legacy numeric amount normalized to decimal string",
			in:   `{"id":"a1","name":"Checking","amount":1000.5}`,
			want: AccountDoc{ID: "a1", Name: "Checking", Amount: "1000.5"},
		},
		{
			name: "legacy integer amount",
			in:   `{"id":"a1","name":"Checking","amount":1000}`,
			want: AccountDoc{ID: "a1", Name: "Checking", Amount: "1000"},
		},
		{
			name: "missing amount",
			in:   `{"id":"a1","name":"Checking"}`,
			want: AccountDoc{ID: "a1", Name: "Checking"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got AccountDoc
			require.NoError(t, json.Unmarshal([]byte(tc.in), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAccountDoc_UnmarshalJSON_PercentagePointer(t *testing.T) {
	var a AccountDoc
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a1","amount":"ct","percentage":12.5}`), &a))
	require.NotNil(t, a.Percentage)
	assert.Equal(t, 12.5, *a.Percentage)
}

func TestPeriodDoc_Validate(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		doc     PeriodDoc
		wantErr bool
	}{
		{
			name: "valid v2",
			doc: PeriodDoc{
				ID: "p1", Label: "Jan", UserID: "u1", CreatedAt: now,
				SchemaVersion: SchemaVersionPeriods,
				Accounts:      []AccountDoc{{ID: "a1"}, {ID: "a2"}},
			},
		},
		{
			name: "valid legacy v1",
			doc: PeriodDoc{
				ID: "p1", Label: "Jan", UserID: "u1", CreatedAt: now,
				SchemaVersion: SchemaVersionLegacyMonths,
			},
		},
		{
			name:    "unknown version",
			doc:     PeriodDoc{ID: "p1", SchemaVersion: 7},
			wantErr: true,
		},
		{
			name: "account without id",
			doc: PeriodDoc{
				ID: "p1", SchemaVersion: SchemaVersionPeriods,
				Accounts: []AccountDoc{{ID: ""}},
			},
			wantErr: true,
		},
		{
			name: "duplicate account ids",
			doc: PeriodDoc{
				ID: "p1", SchemaVersion: SchemaVersionPeriods,
				Accounts: []AccountDoc{{ID: "a1"}, {ID: "a1"}},
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.doc.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, common.ErrorValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
