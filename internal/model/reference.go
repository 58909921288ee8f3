package model

import "strings"

type ZoneNode struct {
	Name     string     `json:"name"`
	Children []ZoneNode `json:"children,omitempty"`
}

func zones(names ...string) []ZoneNode {
	out := make([]ZoneNode, 0, len(names))
	for _, n := range names {
		out = append(out, ZoneNode{Name: n})
	}
	return out
}

var ZoneTree = []ZoneNode{
	{Name: "Hyderabad", Children: []ZoneNode{
		{Name: "North", Children: zones("Begumpet", "Secunderabad", "Bowenpally")},
		{Name: "South", Children: zones("Mehdipatnam", "Attapur", "Rajendranagar")},
		{Name: "East", Children: zones("Uppal", "LB Nagar", "Nacharam")},
		{Name: "West", Children: zones("Gachibowli", "Madhapur", "Kukatpally")},
		{Name: "Central", Children: zones("Abids", "Nampally", "Koti")},
	}},
	{Name: "Cyberbad", Children: []ZoneNode{
		{Name: "North", Children: zones("HITEC City", "Gachibowli", "Nanakramguda")},
		{Name: "South", Children: zones("Madhapur", "Kondapur", "Jubilee Hills")},
	}},
	{Name: "Rachakonda", Children: []ZoneNode{
		{Name: "North", Children: zones("Uppal", "Nagole", "Boduppal")},
		{Name: "South", Children: zones("LB Nagar", "Vanastalipuram", "Hayathnagar")},
	}},
	{Name: "Sangareddy", Children: []ZoneNode{
		{Name: "North", Children: zones("Patancheru", "Bollaram", "Jinnaram")},
		{Name: "South", Children: zones("Sangareddy", "Zaheerabad", "Narayankhed")},
	}},
}

var EncroachmentTypes = []string{
	"Park Encroachment",
	"Nala Encroachment",
	"Lake Encroachment",
	"Government Land Encroachment",
	"Open Space Encroachment",
	"FTL Encroachment",
	"Buffer Zone Encroachment",
	"Road Encroachment",
	"Unauthorized Construction",
	"Layout Violation",
	"Footpath Encroachment",
	"Other",
}

var PetitionSources = []string{"General", "Prajavani", "Email", "WhatsApp", "Twitter", "Other"}

var SubmitterTypes = []string{"Individual", "Association", "Govt", "Public Rep", "Other"}

// NormalizeZone trims every level of a "/"-separated zone path and checks it
// against ZoneTree. Paths of one to three levels are accepted.
func NormalizeZone(raw string) (string, bool) {
	parts := strings.Split(raw, "/")
	levels := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return "", false
		}
		levels = append(levels, p)
	}
	if len(levels) == 0 || len(levels) > 3 {
		return "", false
	}
	canonical := make([]string, 0, len(levels))
	nodes := ZoneTree
	for _, level := range levels {
		var next *ZoneNode
		for i := range nodes {
			if strings.EqualFold(nodes[i].Name, level) {
				next = &nodes[i]
				break
			}
		}
		if next == nil {
			return "", false
		}
		canonical = append(canonical, next.Name)
		nodes = next.Children
	}
	return strings.Join(canonical, "/"), true
}

// ZoneRoot returns the first level of a zone path.
func ZoneRoot(zone string) string {
	if idx := strings.Index(zone, "/"); idx >= 0 {
		return zone[:idx]
	}
	return zone
}

func oneOf(value string, options []string) (string, bool) {
	for _, opt := range options {
		if strings.EqualFold(opt, strings.TrimSpace(value)) {
			return opt, true
		}
	}
	return "", false
}

func NormalizeEncroachmentType(raw string) (string, bool) {
	return oneOf(raw, EncroachmentTypes)
}

func NormalizeSource(raw string) (string, bool) {
	return oneOf(raw, PetitionSources)
}

func NormalizeSubmitter(raw string) (string, bool) {
	return oneOf(raw, SubmitterTypes)
}

type ReferenceData struct {
	Zones             []ZoneNode        `json:"zones"`
	EncroachmentTypes []string          `json:"encroachment_types"`
	PetitionSources   []string          `json:"petition_sources"`
	SubmitterTypes    []string          `json:"submitter_types"`
	TimeBounds        []TimeBound       `json:"time_bounds"`
	Designations      []Designation     `json:"designations"`
	Roles             []UserRole        `json:"roles"`
	Statuses          []PetitionStatus  `json:"statuses"`
	DecisionOutcomes  []DecisionOutcome `json:"decision_outcomes"`
	Recommendations   []Recommendation  `json:"recommendations"`
}

func Reference() ReferenceData {
	return ReferenceData{
		Zones:             ZoneTree,
		EncroachmentTypes: EncroachmentTypes,
		PetitionSources:   PetitionSources,
		SubmitterTypes:    SubmitterTypes,
		TimeBounds:        []TimeBound{TimeBoundPriority, TimeBoundImmediate, TimeBoundNormal},
		Designations:      []Designation{DesignationDCP, DesignationACP, DesignationInspector, DesignationOther},
		Roles:             []UserRole{UserRoleReception, UserRoleEnquiryOfficer, UserRoleHOD, UserRoleAdmin},
		Statuses:          []PetitionStatus{PetitionStatusPending, PetitionStatusUnderInvestigation, PetitionStatusDecisionMade},
		DecisionOutcomes:  []DecisionOutcome{DecisionApproved, DecisionDenied, DecisionPartiallyApproved, DecisionInvalid},
		Recommendations:   []Recommendation{RecommendationActionRequired, RecommendationNoActionRequired},
	}
}
