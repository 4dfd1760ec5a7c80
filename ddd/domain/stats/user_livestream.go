package stats

import "time"

const (
	UniversityStats   = "universityStats"
	CountryStats      = "countryStats"
	FieldOfStudyStats = "fieldOfStudyStats"

	NumberOfParticipants       = "numberOfParticipants"
	NumberOfRegistrations      = "numberOfRegistrations"
	NumberOfTalentPoolProfiles = "numberOfTalentPoolProfiles"
	NumberOfApplicants         = "numberOfApplicants"
	NumberOfJobApplications    = "numberOfJobApplications"
)

// UserProfile 用户在变更时刻的维度信息
type UserProfile struct {
	UniversityCode string `json:"universityCode,omitempty" yaml:"universityCode,omitempty"`
	CountryCode    string `json:"countryCode,omitempty" yaml:"countryCode,omitempty"`
	FieldOfStudyID string `json:"fieldOfStudyId,omitempty" yaml:"fieldOfStudyId,omitempty"`
}

// UserLivestream 单个用户在单场直播中的状态快照
type UserLivestream struct {
	UserID          string               `json:"userId" yaml:"userId"`
	User            *UserProfile         `json:"user,omitempty" yaml:"user,omitempty"`
	Participated    *time.Time           `json:"participated,omitempty" yaml:"participated,omitempty"`
	Registered      *time.Time           `json:"registered,omitempty" yaml:"registered,omitempty"`
	TalentPool      *time.Time           `json:"talentPool,omitempty" yaml:"talentPool,omitempty"`
	Applied         *time.Time           `json:"applied,omitempty" yaml:"applied,omitempty"`
	JobApplications map[string]time.Time `json:"jobApplications,omitempty" yaml:"jobApplications,omitempty"`
}

func (u *UserLivestream) universityCode() string {
	if u.User == nil {
		return ""
	}
	return u.User.UniversityCode
}

func (u *UserLivestream) countryCode() string {
	if u.User == nil {
		return ""
	}
	return u.User.CountryCode
}

func (u *UserLivestream) fieldOfStudyID() string {
	if u.User == nil {
		return ""
	}
	return u.User.FieldOfStudyID
}

var (
	participated = PresenceCounter(NumberOfParticipants, func(u *UserLivestream) bool { return u.Participated != nil })
	registered   = PresenceCounter(NumberOfRegistrations, func(u *UserLivestream) bool { return u.Registered != nil })
	talentPool   = PresenceCounter(NumberOfTalentPoolProfiles, func(u *UserLivestream) bool { return u.TalentPool != nil })
	applied      = PresenceCounter(NumberOfApplicants, func(u *UserLivestream) bool { return u.Applied != nil })
	jobApps      = CountCounter(NumberOfJobApplications, func(u *UserLivestream) int { return len(u.JobApplications) })

	universityDimension = Dimension[UserLivestream]{Field: UniversityStats, Key: (*UserLivestream).universityCode}
)

// NewLivestreamEngine 直播维度的统计：通用 + 大学/国家/专业
func NewLivestreamEngine() *Engine[UserLivestream] {
	return &Engine[UserLivestream]{
		Counters: []Counter[UserLivestream]{participated, registered, talentPool, applied, jobApps},
		Dimensions: []Dimension[UserLivestream]{
			universityDimension,
			{Field: CountryStats, Key: (*UserLivestream).countryCode},
			{Field: FieldOfStudyStats, Key: (*UserLivestream).fieldOfStudyID},
		},
	}
}

// NewGroupEngine 群组维度的统计，只按大学细分
func NewGroupEngine() *Engine[UserLivestream] {
	return &Engine[UserLivestream]{
		Counters:   []Counter[UserLivestream]{participated, registered, talentPool},
		Dimensions: []Dimension[UserLivestream]{universityDimension},
	}
}
