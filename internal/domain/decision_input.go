package domain

import (
	"encoding/json"
	"fmt"
)

type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionUpdate ActionKind = "update"
	ActionSkip   ActionKind = "skip"
	ActionMerge  ActionKind = "merge_into_existing"
)

// DecisionInput is the JSON shape of one decision. Item holds the domain payload
// (an Extracted* object) and ExistingID targets the duplicate for update/merge.
type DecisionInput struct {
	Action     ActionKind      `json:"action"`
	ExistingID *int64          `json:"existingId,omitempty"`
	CatalogID  *int64          `json:"catalogId,omitempty"`
	Item       json.RawMessage `json:"item"`
}

type BasicInfoInput struct {
	Action ActionKind       `json:"action"`
	Fields []BasicInfoField `json:"fields,omitempty"`
	Values BasicInfo        `json:"values"`
}

// ApplyCVUpdatesInput is the wire form of ApplyCVUpdatesRequest.
type ApplyCVUpdatesInput struct {
	BasicInfo       *BasicInfoInput `json:"basicInfo,omitempty"`
	Skills          []DecisionInput `json:"skills,omitempty"`
	JobRoleLevels   []DecisionInput `json:"jobRoleLevels,omitempty"`
	Certificates    []DecisionInput `json:"certificates,omitempty"`
	Projects        []DecisionInput `json:"projects,omitempty"`
	WorkExperiences []DecisionInput `json:"workExperiences,omitempty"`
}

// DecisionError points at the offending decision in an ApplyCVUpdatesInput.
type DecisionError struct {
	Path   string
	Reason string
}

func (e *DecisionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func unsupported(path string, a ActionKind) error {
	return &DecisionError{Path: path, Reason: fmt.Sprintf("action %q is not supported here", a)}
}

func decodeItem(path string, raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return &DecisionError{Path: path, Reason: "item is required"}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &DecisionError{Path: path, Reason: "invalid item: " + err.Error()}
	}
	return nil
}

func requireExisting(path string, in DecisionInput) (int64, error) {
	if in.ExistingID == nil || *in.ExistingID <= 0 {
		return 0, &DecisionError{Path: path, Reason: "existingId is required"}
	}
	return *in.ExistingID, nil
}

// Decode converts the wire form into typed decisions, rejecting actions a domain does not support.
func (in ApplyCVUpdatesInput) Decode() (ApplyCVUpdatesRequest, error) {
	var req ApplyCVUpdatesRequest

	if in.BasicInfo != nil {
		switch in.BasicInfo.Action {
		case ActionUpdate:
			fields := in.BasicInfo.Fields
			if len(fields) == 0 {
				fields = BasicInfoFields
			}
			for _, f := range fields {
				if !isBasicInfoField(f) {
					return req, &DecisionError{Path: "basicInfo.fields", Reason: fmt.Sprintf("unknown field %q", f)}
				}
			}
			req.BasicInfo = UpdateBasicInfo{Fields: fields, Values: in.BasicInfo.Values}
		case ActionSkip:
			req.BasicInfo = SkipBasicInfo{}
		default:
			return req, unsupported("basicInfo", in.BasicInfo.Action)
		}
	}

	for i, d := range in.Skills {
		path := fmt.Sprintf("skills[%d]", i)
		var item ExtractedSkill
		if err := decodeItem(path, d.Item, &item); err != nil {
			return req, err
		}
		switch d.Action {
		case ActionCreate:
			req.Skills = append(req.Skills, CreateSkill{Skill: item, CatalogID: d.CatalogID})
		case ActionSkip:
			req.Skills = append(req.Skills, SkipSkill{Name: item.Name})
		default:
			return req, unsupported(path, d.Action)
		}
	}

	for i, d := range in.JobRoleLevels {
		path := fmt.Sprintf("jobRoleLevels[%d]", i)
		var item ExtractedJobRoleLevel
		if err := decodeItem(path, d.Item, &item); err != nil {
			return req, err
		}
		switch d.Action {
		case ActionCreate:
			req.JobRoleLevels = append(req.JobRoleLevels, CreateJobRoleLevel{JobRoleLevel: item, CatalogID: d.CatalogID})
		case ActionSkip:
			req.JobRoleLevels = append(req.JobRoleLevels, SkipJobRoleLevel{Position: item.Position, Level: item.Level})
		default:
			return req, unsupported(path, d.Action)
		}
	}

	for i, d := range in.Certificates {
		path := fmt.Sprintf("certificates[%d]", i)
		var item ExtractedCertificate
		if err := decodeItem(path, d.Item, &item); err != nil {
			return req, err
		}
		switch d.Action {
		case ActionCreate:
			req.Certificates = append(req.Certificates, CreateCertificate{Certificate: item})
		case ActionSkip:
			req.Certificates = append(req.Certificates, SkipCertificate{Name: item.Name})
		default:
			return req, unsupported(path, d.Action)
		}
	}

	for i, d := range in.Projects {
		path := fmt.Sprintf("projects[%d]", i)
		var item ExtractedProject
		if err := decodeItem(path, d.Item, &item); err != nil {
			return req, err
		}
		switch d.Action {
		case ActionCreate:
			req.Projects = append(req.Projects, CreateProject{Project: item})
		case ActionUpdate, ActionMerge:
			id, err := requireExisting(path, d)
			if err != nil {
				return req, err
			}
			if d.Action == ActionUpdate {
				req.Projects = append(req.Projects, UpdateProject{ExistingID: id, Project: item})
			} else {
				req.Projects = append(req.Projects, MergeProject{ExistingID: id, Project: item})
			}
		case ActionSkip:
			req.Projects = append(req.Projects, SkipProject{ProjectName: item.ProjectName})
		default:
			return req, unsupported(path, d.Action)
		}
	}

	for i, d := range in.WorkExperiences {
		path := fmt.Sprintf("workExperiences[%d]", i)
		var item ExtractedWorkExperience
		if err := decodeItem(path, d.Item, &item); err != nil {
			return req, err
		}
		switch d.Action {
		case ActionCreate:
			req.WorkExperiences = append(req.WorkExperiences, CreateWorkExperience{WorkExperience: item})
		case ActionUpdate, ActionMerge:
			id, err := requireExisting(path, d)
			if err != nil {
				return req, err
			}
			if d.Action == ActionUpdate {
				req.WorkExperiences = append(req.WorkExperiences, UpdateWorkExperience{ExistingID: id, WorkExperience: item})
			} else {
				req.WorkExperiences = append(req.WorkExperiences, MergeWorkExperience{ExistingID: id, WorkExperience: item})
			}
		case ActionSkip:
			req.WorkExperiences = append(req.WorkExperiences, SkipWorkExperience{Company: item.Company, Position: item.Position})
		default:
			return req, unsupported(path, d.Action)
		}
	}

	return req, nil
}

func isBasicInfoField(f BasicInfoField) bool {
	for _, known := range BasicInfoFields {
		if f == known {
			return true
		}
	}
	return false
}
