package scw

import (
	"net/url"
	"strings"

	"c6t/teamserver"
)

// fallbackVideos cover rules whose CWE has no video on the training side.
var fallbackVideos = map[string]string{
	"escape-templates-off":                "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"clickjacking-control-missing":        "https://media.securecodewarrior.com/v2/Module_25_CLICKJACKING_v2.mp4",
	"event-validation-disabled":           "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"forms-auth-protection":               "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"forms-auth-redirect":                 "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"http-only-disabled":                  "https://media.securecodewarrior.com/v2/Module_74_WEAK_SESSION_TOKEN_GENERATION_v2.mp4",
	"httponly":                            "https://media.securecodewarrior.com/v2/Module_74_WEAK_SESSION_TOKEN_GENERATION_v2.mp4",
	"max-request-length":                  "https://media.securecodewarrior.com/v2/Module_54_DoS_Generic_v2.mp4",
	"rails-http-only-disabled":            "https://media.securecodewarrior.com/v2/Module_74_WEAK_SESSION_TOKEN_GENERATION_v2.mp4",
	"reflected-xss":                       "https://media.securecodewarrior.com/v2/Module_73_Reflected_Cross+Site+Scripting_v2.mp4",
	"request-validation-disabled":         "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"request-validation-control-disabled": "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"role-manager-protection":             "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"session-rewriting":                   "https://media.securecodewarrior.com/v2/module_136_exposed_session_tokens.mp4",
	"session-regenerate":                  "https://media.securecodewarrior.com/v2/Module_74_WEAK_SESSION_TOKEN_GENERATION_v2.mp4",
	"stored-xss":                          "https://media.securecodewarrior.com/v2/Module_72_Stored_Cross+Site+Scripting_v2.mp4",
	"version-header-enabled":              "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"verb-tampering":                      "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"viewstate-mac-disabled":              "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"wcf-detect-replays":                  "https://media.securecodewarrior.com/v2/Security_Misconfiguration_v2.mp4",
	"wcf-exception-details":               "https://media.securecodewarrior.com/v2/module_184_error_details.mp4",
	"wcf-metadata-enabled":                "https://media.securecodewarrior.com/v2/module_184_error_details.mp4",
	"x-powered-by-header":                 "https://media.securecodewarrior.com/v2/module_184_error_details.mp4",
	"xxssprotection-header-disabled":      "https://media.securecodewarrior.com/v2/Module_73_Reflected_Cross+Site+Scripting_v2.mp4",
}

// languageKeys maps TeamServer agent languages to training language keys.
// Languages without a key get no exercise link.
var languageKeys = map[string]string{
	".NET":      "c#",
	".NET Core": "c#(.net):mvc",
	"Java":      "java",
	"Node":      "nodejs",
	"Python":    "python:django",
	"Ruby":      "ruby",
}

func LanguageKey(language string) string {
	return languageKeys[strings.TrimSpace(language)]
}

func videoFor(rule teamserver.Rule, training Training) string {
	for _, video := range training.Videos {
		if video = strings.TrimSpace(video); video != "" {
			return strings.ReplaceAll(video, " ", "+")
		}
	}
	return fallbackVideos[rule.Name]
}

// BuildReferences returns the reference lines for rule: an optional video
// line first, then one exercise link per supported language.
func BuildReferences(rule teamserver.Rule, trainingURL string, training Training) []string {
	refs := make([]string, 0, len(rule.Languages)+1)
	if video := videoFor(rule, training); video != "" {
		refs = append(refs, "<br>Watch a video on this topic with Secure Code Warrior (beta):<br>"+video)
	}

	exercises := 0
	for _, language := range rule.Languages {
		key := LanguageKey(language)
		if key == "" {
			continue
		}
		link := trainingURL + "&LanguageKey=" + url.QueryEscape(key) + "&redirect=true"
		if exercises == 0 {
			refs = append(refs, "<br>Complete a training exercise on this topic for your language using Secure Code Warrior (beta):<br><b>"+language+"</b>: "+link)
		} else {
			refs = append(refs, "<b>"+language+"</b>: "+link)
		}
		exercises++
	}
	return refs
}
