package version

import "runtime"

var (
	// These values are injected during build - DO NOT MODIFY
	Version   = "VERSION_PLACEHOLDER"
	CommitSHA = "COMMIT_PLACEHOLDER"
)

const Name = "sonaveeb-anki"

func GetVersionInfo() string {
	return Name + " " + Version
}

func GetDetailedVersionInfo() string {
	return Name + "\n" +
		"Version:  " + Version + "\n" +
		"Commit:   " + CommitSHA + "\n" +
		"Go:       " + runtime.Version() + "\n"
}
