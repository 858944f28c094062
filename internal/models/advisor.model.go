package models

import "advisorapi/internal/utils"

type HealthStatus string

const (
	HealthStatusGreen  HealthStatus = "Green"
	HealthStatusYellow HealthStatus = "Yellow"
	HealthStatusRed    HealthStatus = "Red"
)

func (h HealthStatus) IsValid() bool {
	switch h {
	case HealthStatusGreen, HealthStatusYellow, HealthStatusRed:
		return true
	}
	return false
}

type Advisor struct {
	BaseModel
	Name         string       `gorm:"type:varchar(255);not null"                        json:"name"`
	SIN          string       `gorm:"column:sin;type:varchar(255);not null;uniqueIndex" json:"sin"`
	Address      string       `gorm:"type:varchar(255)"                                 json:"address"`
	Phone        string       `gorm:"type:varchar(255);not null"                        json:"phone"`
	HealthStatus HealthStatus `gorm:"type:varchar(16);not null"                         json:"healthStatus"`
}

func (Advisor) TableName() string {
	return "advisors"
}

// AdvisorView is the display-safe projection of an Advisor. It is the only
// shape advisors leave the service in.
type AdvisorView struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	SIN          string       `json:"sin"`
	Address      string       `json:"address"`
	Phone        string       `json:"phone"`
	HealthStatus HealthStatus `json:"healthStatus"`
}

func NewAdvisorView(advisor Advisor) AdvisorView {
	return AdvisorView{
		ID:           advisor.ID,
		Name:         advisor.Name,
		SIN:          utils.MaskSIN(advisor.SIN),
		Address:      advisor.Address,
		Phone:        utils.MaskPhone(advisor.Phone),
		HealthStatus: advisor.HealthStatus,
	}
}

func NewAdvisorViews(advisors []*Advisor) []AdvisorView {
	views := make([]AdvisorView, 0, len(advisors))
	for _, advisor := range advisors {
		if advisor == nil {
			continue
		}
		views = append(views, NewAdvisorView(*advisor))
	}
	return views
}
