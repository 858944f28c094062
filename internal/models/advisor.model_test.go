package models

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAdvisorView_MasksSensitiveFields(t *testing.T) {
	advisor := Advisor{
		BaseModel:    BaseModel{ID: 1},
		Name:         "John Doe",
		SIN:          "123456789",
		Address:      "123 Street",
		Phone:        "12345678",
		HealthStatus: HealthStatusGreen,
	}

	view := NewAdvisorView(advisor)

	assert.Equal(t, AdvisorView{
		ID:           1,
		Name:         "John Doe",
		SIN:          "*****6789",
		Address:      "123 Street",
		Phone:        "****5678",
		HealthStatus: HealthStatusGreen,
	}, view)
	assert.Equal(t, "123456789", advisor.SIN, "stored record must not be mutated")
	assert.Equal(t, "12345678", advisor.Phone, "stored record must not be mutated")
}

func TestNewAdvisorViews(t *testing.T) {
	t.Run("empty input gives empty non-nil slice", func(t *testing.T) {
		views := NewAdvisorViews(nil)
		assert.NotNil(t, views)
		assert.Empty(t, views)
	})

	t.Run("keeps order", func(t *testing.T) {
		views := NewAdvisorViews([]*Advisor{
			{BaseModel: BaseModel{ID: 2}, SIN: "987654321", Phone: "87654321"},
			{BaseModel: BaseModel{ID: 1}, SIN: "123", Phone: "1"},
		})
		assert.Len(t, views, 2)
		assert.Equal(t, 2, views[0].ID)
		assert.Equal(t, "*****4321", views[0].SIN)
		assert.Equal(t, "123", views[1].SIN)
		assert.Equal(t, "1", views[1].Phone)
	})
}

func TestHealthStatus_IsValid(t *testing.T) {
	assert.True(t, HealthStatusGreen.IsValid())
	assert.True(t, HealthStatusYellow.IsValid())
	assert.True(t, HealthStatusRed.IsValid())
	assert.False(t, HealthStatus("").IsValid())
	assert.False(t, HealthStatus("green").IsValid())
	assert.False(t, HealthStatus("Blue").IsValid())
}

func TestAdvisor_ColumnTags(t *testing.T) {
	tests := map[string]struct {
		gorm string
		json string
	}{
		"Name":         {gorm: "type:varchar(255);not null", json: "name"},
		"SIN":          {gorm: "column:sin;type:varchar(255);not null;uniqueIndex", json: "sin"},
		"Address":      {gorm: "type:varchar(255)", json: "address"},
		"Phone":        {gorm: "type:varchar(255);not null", json: "phone"},
		"HealthStatus": {gorm: "type:varchar(16);not null", json: "healthStatus"},
	}

	advisorType := reflect.TypeOf(Advisor{})
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			field, ok := advisorType.FieldByName(name)
			assert.True(t, ok)
			assert.Equal(t, want.gorm, field.Tag.Get("gorm"))
			assert.Equal(t, want.json, field.Tag.Get("json"))
		})
	}
}
