package app

const (
	Name            = "cipherbridge"
	ConfigFilename  = "config.json"
	JournalFilename = "journal.db"
	LogFilename     = "cipherbridge.log"
)
