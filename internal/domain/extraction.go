package domain

// CVExtraction is the structured output of parsing a CV document. It is never persisted as-is.
type CVExtraction struct {
	BasicInfo       BasicInfo                 `json:"basicInfo"`
	Skills          []ExtractedSkill          `json:"skills"`
	JobRoleLevels   []ExtractedJobRoleLevel   `json:"jobRoleLevels"`
	Certificates    []ExtractedCertificate    `json:"certificates"`
	Projects        []ExtractedProject        `json:"projects"`
	WorkExperiences []ExtractedWorkExperience `json:"workExperiences"`
}

type ExtractedSkill struct {
	Name     string  `json:"name"`
	Level    string  `json:"level,omitempty"`
	YearsExp float64 `json:"yearsExp,omitempty"`
}

type ExtractedJobRoleLevel struct {
	Position     string  `json:"position"`
	Level        string  `json:"level,omitempty"`
	YearsOfExp   float64 `json:"yearsOfExp,omitempty"`
	RatePerMonth float64 `json:"ratePerMonth,omitempty"`
}

type ExtractedCertificate struct {
	Name       string `json:"name"`
	IssuedBy   string `json:"issuedBy,omitempty"`
	IssuedDate string `json:"issuedDate,omitempty"`
}

// Dates in extracted entries are free-form ("2021-03", "03/2021", "2021") and parsed leniently.
type ExtractedProject struct {
	ProjectName  string   `json:"projectName"`
	Position     string   `json:"position,omitempty"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
}

type ExtractedWorkExperience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	// EndDate empty or "present" means ongoing.
	EndDate string `json:"endDate,omitempty"`
}
