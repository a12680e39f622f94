package core

// Education levels shared by students, job postings and teachers.
const (
	LevelPrimary        = "PRIMARY"
	LevelLowerSecondary = "LOWER_SECONDARY"
	LevelUpperSecondary = "UPPER_SECONDARY"
	LevelPreUniversity  = "PRE_UNIVERSITY"
	LevelUniversity     = "UNIVERSITY"
	LevelAdult          = "ADULT"
)

var Levels = []string{
	LevelPrimary,
	LevelLowerSecondary,
	LevelUpperSecondary,
	LevelPreUniversity,
	LevelUniversity,
	LevelAdult,
}

var (
	levelTag  = "level"
	levelText = "{0} must be one of PRIMARY, LOWER_SECONDARY, UPPER_SECONDARY, PRE_UNIVERSITY, UNIVERSITY or ADULT"
)
