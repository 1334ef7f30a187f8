package domain

// GameView 是 getState 返回给轮询客户端的脱敏视图。
// 脱敏契约:
//   - 卧底在回合进行中看不到真实地点 (Location 为 nil)；
//   - 非卧底只看到自己的角色，看不到别人的；
//   - 回合进行中卧底名单只对卧底自己可见，terminal 后对所有人公开；
//   - 票面只以计票结果 (voteCounts) 的形式暴露，不泄露单票指向。
type GameView struct {
	Code         string     `json:"code"`
	Status       string     `json:"status"`
	Players      []Player   `json:"players"`
	Settings     Settings   `json:"settings"`
	CurrentRound *RoundView `json:"currentRound,omitempty"`
}

// RoundView 是 Round 针对单个请求者的脱敏投影。
type RoundView struct {
	RoundNumber      int            `json:"roundNumber"`
	Location         *Location      `json:"location,omitempty"`
	YourRole         string         `json:"yourRole,omitempty"`
	IsMole           bool           `json:"isMole"`
	MoleIDs          []string       `json:"moleIds,omitempty"`
	MoleCount        int            `json:"moleCount,omitempty"`
	CurrentTurn      string         `json:"currentTurn"`
	CurrentQuestion  *Question      `json:"currentQuestion,omitempty"`
	WaitingForAnswer string         `json:"waitingForAnswer,omitempty"`
	EndTime          int64          `json:"endTime"`
	Accusation       *Accusation    `json:"accusation,omitempty"`
	VoteCounts       map[string]int `json:"voteCounts,omitempty"`
	GuessedLocation  string         `json:"guessedLocation,omitempty"`
	MoleWon          *bool          `json:"moleWon,omitempty"`
}

// View 构建 requesterID 视角下的脱敏视图。requesterID 可以为空
// (例如观战轮询)，此时按"非卧底且未分配角色"处理。
func (g *Game) View(requesterID string) *GameView {
	view := &GameView{
		Code:     g.Code,
		Status:   g.Status,
		Players:  g.Players,
		Settings: g.Settings,
	}
	if g.CurrentRound == nil {
		return view
	}

	round := g.CurrentRound
	isMole := requesterID != "" && round.IsMole(requesterID)
	ended := g.Status == StatusRoundEnd

	rv := &RoundView{
		RoundNumber:      round.RoundNumber,
		IsMole:           isMole,
		CurrentTurn:      round.CurrentTurn,
		CurrentQuestion:  round.CurrentQuestion,
		WaitingForAnswer: round.WaitingForAnswer,
		EndTime:          round.EndTime,
		MoleWon:          round.MoleWon,
	}

	// 地点: 回合进行中对卧底隐藏，终局后对所有人公开
	if !isMole || ended {
		rv.Location = round.Location
	}
	// 角色: 只下发请求者自己的
	if role, ok := round.PlayerRoles[requesterID]; ok {
		rv.YourRole = role
	}
	// 卧底名单: 进行中只有卧底自己可见 (双卧底互知)，终局后公开
	if isMole || ended {
		rv.MoleIDs = round.MoleIDs
	}
	if g.Settings.ShowMoleCount {
		rv.MoleCount = len(round.MoleIDs)
	}
	// 进行中的票面只给计票结果；指认记录本身在终局后随 Accusation 公开
	if len(round.Votes) > 0 {
		rv.VoteCounts = round.VoteCounts()
	}
	if ended {
		rv.Accusation = round.Accusation
		rv.GuessedLocation = round.GuessedLocation
	}

	view.CurrentRound = rv
	return view
}
