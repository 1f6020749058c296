package models

import (
	"errors"
	"time"
)

type CampaignStatus string

const (
	CampaignStatusActive   CampaignStatus = "active"
	CampaignStatusPaused   CampaignStatus = "paused"
	CampaignStatusArchived CampaignStatus = "archived"
)

type CampaignObjective string

const (
	ObjectiveBrandAwareness CampaignObjective = "BRAND_AWARENESS"
	ObjectiveTraffic        CampaignObjective = "LINK_CLICKS"
	ObjectiveEngagement     CampaignObjective = "POST_ENGAGEMENT"
	ObjectiveLeadGeneration CampaignObjective = "LEAD_GENERATION"
	ObjectiveConversions    CampaignObjective = "CONVERSIONS"
	ObjectivePurchase       CampaignObjective = "PURCHASE"
)

// MetaObjectiveToActionType maps a campaign objective to the action type
// the ad platform reports conversions under in cost_per_action_type rows.
var MetaObjectiveToActionType = map[CampaignObjective]string{
	ObjectiveBrandAwareness: "brand_awareness",
	ObjectiveTraffic:        "link_click",
	ObjectiveEngagement:     "post_engagement",
	ObjectiveLeadGeneration: "lead",
	ObjectiveConversions:    "offsite_conversion",
	ObjectivePurchase:       "offsite_conversion.fb_pixel_purchase",
}

// Campaign is an advertising campaign tracked by the dashboard. ExternalID
// is the ad platform's own campaign identifier; UTMCampaign links the
// campaign to CRM records carrying the same UTM tag.
type Campaign struct {
	ID          string            `json:"id"`
	ExternalID  string            `json:"external_id"`
	AccountID   string            `json:"account_id"`
	Name        string            `json:"name"`
	Status      CampaignStatus    `json:"status"`
	Objective   CampaignObjective `json:"objective,omitempty"`
	Channel     string            `json:"channel"`
	UTMCampaign string            `json:"utm_campaign,omitempty"`
	DailyBudget float64           `json:"daily_budget,omitempty"`
	CreatedAt   time.Time         `json:"created_at,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at,omitempty"`
}

// Validate checks campaign fields before persistence.
func (c *Campaign) Validate() error {
	if c.ID == "" {
		return errors.New("campaign id is required")
	}
	if c.Name == "" {
		return errors.New("campaign name is required")
	}
	switch c.Status {
	case CampaignStatusActive, CampaignStatusPaused, CampaignStatusArchived:
	default:
		return errors.New("invalid campaign status: " + string(c.Status))
	}
	if c.DailyBudget < 0 {
		return errors.New("daily budget must not be negative")
	}
	return nil
}
