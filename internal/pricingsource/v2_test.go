package pricingsource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromV2_NormalizesPayload(t *testing.T) {
	raw := []byte(`{
		"currencyCode": "usd",
		"quantities": [
			{
				"qty": "25",
				"unitAmount": 11,
				"extendedAmount": "275",
				"leadTimeDays": 12,
				"marginPct": 22,
				"discountPct": "5",
				"costComponents": {
					"material": "3.74",
					"machining": 2.86,
					"margin": 1.1,
					"overhead": "oops"
				}
			},
			{"qty": 10, "unitAmount": "12.50"}
		],
		"leadTimes": {"standardDays": 10, "expediteDays": "4"},
		"orderMinimums": {"minimumQuantity": 5, "minimumValue": "75.00"},
		"tax": {"ratePct": "8.25", "included": true},
		"metadata": {"engineVersion": "2.3.1", "attempt": 3}
	}`)

	pc, err := FromV2(raw, "EUR")
	require.NoError(t, err)

	assert.Equal(t, SourceEngineV2, pc.Source)
	assert.Equal(t, "USD", pc.Currency)

	require.Len(t, pc.Matrix, 2)

	// Matrix is sorted ascending by quantity regardless of payload order.
	first := pc.Matrix[0]
	assert.Equal(t, 10, first.Quantity)
	assert.Equal(t, 12.50, first.UnitPrice)
	assert.Equal(t, 125.00, first.TotalPrice, "missing total derives from unit × qty")
	assert.Nil(t, first.LeadTimeDays)
	assert.Nil(t, first.MarginPercentage)
	assert.Nil(t, first.Breakdown)

	second := pc.Matrix[1]
	assert.Equal(t, 25, second.Quantity)
	assert.Equal(t, 11.00, second.UnitPrice)
	assert.Equal(t, 275.00, second.TotalPrice)
	require.NotNil(t, second.LeadTimeDays)
	assert.Equal(t, 12, *second.LeadTimeDays)
	require.NotNil(t, second.MarginPercentage)
	assert.Equal(t, 22.0, *second.MarginPercentage)
	require.NotNil(t, second.DiscountPercentage)
	assert.Equal(t, 5.0, *second.DiscountPercentage)

	// Malformed breakdown components are absent, never zero.
	require.NotNil(t, second.Breakdown)
	assert.Equal(t, 3.74, second.Breakdown[ComponentMaterial])
	assert.Equal(t, 2.86, second.Breakdown[ComponentMachining])
	assert.Equal(t, 1.10, second.Breakdown[ComponentMargin])
	_, hasOverhead := second.Breakdown[ComponentOverhead]
	assert.False(t, hasOverhead)

	require.NotNil(t, pc.LeadTimes)
	assert.Equal(t, 10, *pc.LeadTimes.StandardDays)
	assert.Equal(t, 4, *pc.LeadTimes.ExpediteDays)

	require.NotNil(t, pc.Minimums)
	assert.Equal(t, 5, *pc.Minimums.OrderQuantity)
	assert.Equal(t, 75.00, *pc.Minimums.OrderValue)

	require.NotNil(t, pc.Tax)
	assert.Equal(t, 8.25, *pc.Tax.Rate)
	assert.Nil(t, pc.Tax.Amount)
	assert.True(t, pc.Tax.Inclusive)

	// Non-string metadata values are skipped.
	assert.Equal(t, map[string]string{"engineVersion": "2.3.1"}, pc.Metadata)
}

func TestFromV2_DropsMalformedRows(t *testing.T) {
	raw := []byte(`{
		"currencyCode": "USD",
		"quantities": [
			{"qty": 10, "unitAmount": 12.5},
			{"qty": 50, "unitAmount": "not-a-number"},
			{"qty": 0, "unitAmount": 5},
			{"unitAmount": 9},
			{"qty": 25, "unitAmount": -4},
			"garbage"
		]
	}`)

	pc, err := FromV2(raw, "USD")
	require.NoError(t, err)

	require.Len(t, pc.Matrix, 1)
	assert.Equal(t, 10, pc.Matrix[0].Quantity)
}

func TestFromV2_FallbackCurrency(t *testing.T) {
	raw := []byte(`{"quantities": [{"qty": 1, "unitAmount": 10}]}`)

	pc, err := FromV2(raw, "gbp")
	require.NoError(t, err)
	assert.Equal(t, "GBP", pc.Currency)

	pc, err = FromV2(raw, "not-a-code")
	require.NoError(t, err)
	assert.Equal(t, "USD", pc.Currency)
}

func TestFromV2_DuplicateQuantitiesKeepFirst(t *testing.T) {
	raw := []byte(`{
		"currencyCode": "USD",
		"quantities": [
			{"qty": 10, "unitAmount": 12.5},
			{"qty": 10, "unitAmount": 99}
		]
	}`)

	pc, err := FromV2(raw, "USD")
	require.NoError(t, err)
	require.Len(t, pc.Matrix, 1)
	assert.Equal(t, 12.50, pc.Matrix[0].UnitPrice)
}

func TestFromV2_EmptyMatrixViolatesSchema(t *testing.T) {
	_, err := FromV2([]byte(`{"currencyCode": "USD"}`), "USD")

	var schemaErr *SchemaValidationError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, SourceEngineV2, schemaErr.Source)
}

func TestFromV2_UndecodablePayload(t *testing.T) {
	_, err := FromV2([]byte(`{not json`), "USD")
	require.Error(t, err)

	var schemaErr *SchemaValidationError
	assert.False(t, errors.As(err, &schemaErr), "decode failures are not schema violations")
}
