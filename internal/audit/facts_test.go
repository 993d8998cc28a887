package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryFacts_AddSums(t *testing.T) {
	var f DeliveryFacts
	f.Add("1022", 24)
	f.Add("1022", 6)
	f.Add("1001", 1)

	assert.Equal(t, float64(30), f.Get("1022"))
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"1001", "1022"}, f.Remaining())
}

func TestDeliveryFacts_FirstDateWins(t *testing.T) {
	f := NewDeliveryFacts()
	assert.False(t, f.SetDateOnce(""))
	assert.True(t, f.SetDateOnce("03-02-2025"))
	assert.False(t, f.SetDateOnce("10-02-2025"))
	assert.Equal(t, "03-02-2025", f.DeliveryDate)
}

func TestDeliveryFacts_TakeConsumes(t *testing.T) {
	f := NewDeliveryFacts()
	f.Add("1001", 8)

	assert.Equal(t, float64(8), f.Take("1001"))
	assert.Equal(t, float64(0), f.Take("1001"))
	assert.Empty(t, f.Remaining())
}

func TestDeliveryFacts_CloneIsIndependent(t *testing.T) {
	f := NewDeliveryFacts()
	f.Add("1001", 8)
	f.SetDateOnce("03-02-2025")

	c := f.Clone()
	c.Take("1001")
	c.Add("1003", 2)

	assert.Equal(t, float64(8), f.Get("1001"))
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, "03-02-2025", c.DeliveryDate)
}
