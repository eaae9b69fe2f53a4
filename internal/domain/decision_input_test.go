package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"talent-hub-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeInput(t *testing.T, body string) (domain.ApplyCVUpdatesRequest, error) {
	t.Helper()
	var in domain.ApplyCVUpdatesInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in.Decode()
}

func TestDecodeDecisions(t *testing.T) {
	req, err := decodeInput(t, `{
		"basicInfo": {"action": "update", "fields": ["email"], "values": {"email": "a@x.com"}},
		"skills": [
			{"action": "create", "catalogId": 7, "item": {"name": "Go", "level": "senior"}},
			{"action": "skip", "item": {"name": "COBOL"}}
		],
		"projects": [
			{"action": "merge_into_existing", "existingId": 12, "item": {"projectName": "Payments"}}
		],
		"workExperiences": [
			{"action": "update", "existingId": 3, "item": {"company": "Acme", "position": "Dev"}}
		]
	}`)
	require.NoError(t, err)

	assert.Equal(t, domain.UpdateBasicInfo{
		Fields: []domain.BasicInfoField{domain.FieldEmail},
		Values: domain.BasicInfo{Email: "a@x.com"},
	}, req.BasicInfo)

	require.Len(t, req.Skills, 2)
	create, ok := req.Skills[0].(domain.CreateSkill)
	require.True(t, ok)
	assert.Equal(t, int64(7), *create.CatalogID)
	assert.Equal(t, domain.SkipSkill{Name: "COBOL"}, req.Skills[1])

	require.Len(t, req.Projects, 1)
	merge, ok := req.Projects[0].(domain.MergeProject)
	require.True(t, ok)
	assert.Equal(t, int64(12), merge.ExistingID)

	require.Len(t, req.WorkExperiences, 1)
	_, ok = req.WorkExperiences[0].(domain.UpdateWorkExperience)
	assert.True(t, ok)
}

func TestDecodeRejectsUnsupportedActions(t *testing.T) {
	cases := map[string]string{
		"merge on catalog domain":   `{"skills": [{"action": "merge_into_existing", "item": {"name": "Go"}}]}`,
		"update without existingId": `{"projects": [{"action": "update", "item": {"projectName": "X"}}]}`,
		"missing item":              `{"certificates": [{"action": "create"}]}`,
		"unknown basic info field":  `{"basicInfo": {"action": "update", "fields": ["salary"]}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeInput(t, body)
			var decErr *domain.DecisionError
			assert.True(t, errors.As(err, &decErr), "expected DecisionError, got %v", err)
		})
	}
}

func TestDecodeBasicInfoDefaultsToAllFields(t *testing.T) {
	req, err := decodeInput(t, `{"basicInfo": {"action": "update", "values": {"fullName": "A"}}}`)
	require.NoError(t, err)
	upd := req.BasicInfo.(domain.UpdateBasicInfo)
	assert.Equal(t, domain.BasicInfoFields, upd.Fields)
}
