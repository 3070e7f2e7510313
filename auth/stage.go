package auth

// Stage is one step of the login state machine. Stages run strictly in
// declaration order; TwoFactor, Superadmin and SelectOrganization may be
// skipped but never re-entered.
type Stage int

const (
	StageInitSession Stage = iota + 1
	StageCollectUsername
	StageCheckSSO
	StageCheckLicense
	StageCollectPassword
	StageAuthenticate
	StageCaptureXSRF
	StageTwoFactor
	StageRoleCheck
	StageSuperadmin
	StageSelectOrganization
	StageMintCredentials
	StagePersist
	StageDone
)

var stageNames = map[Stage]string{
	StageInitSession:        "InitSession",
	StageCollectUsername:    "CollectUsername",
	StageCheckSSO:           "CheckSSO",
	StageCheckLicense:       "CheckLicense",
	StageCollectPassword:    "CollectPassword",
	StageAuthenticate:       "Authenticate",
	StageCaptureXSRF:        "CaptureXSRF",
	StageTwoFactor:          "TwoFactor",
	StageRoleCheck:          "RoleCheck",
	StageSuperadmin:         "Superadmin",
	StageSelectOrganization: "SelectOrganization",
	StageMintCredentials:    "MintCredentials",
	StagePersist:            "Persist",
	StageDone:               "Done",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "Unknown"
}
