package game

// State is the overall game phase.
type State int

const (
	GameStarted State = iota
	PlayingLevel
	EngagingEnemies
	BossStage
	EngagingBoss
	LevelCompleted
	GameWon
	GameLost
	GamePaused
	RestartGame
)

var stateNames = [...]string{
	GameStarted:     "gameStarted",
	PlayingLevel:    "playingLevel",
	EngagingEnemies: "engagingEnemies",
	BossStage:       "bossStage",
	EngagingBoss:    "engagingBoss",
	LevelCompleted:  "levelCompleted",
	GameWon:         "gameWon",
	GameLost:        "gameLost",
	GamePaused:      "gamePaused",
	RestartGame:     "restartGame",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// exploring reports whether the player can move between rooms.
func (s State) exploring() bool {
	return s == PlayingLevel || s == BossStage
}

func (s State) engaging() bool {
	return s == EngagingEnemies || s == EngagingBoss
}

// Over reports whether the game has ended, won or lost.
func (s State) Over() bool {
	return s == GameWon || s == GameLost
}
