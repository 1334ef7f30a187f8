// Package domain 定义了游戏服务端的核心数据模型 (Game 聚合根及其子结构)。
// 整个 Game 以单个 JSON 文档的形式持久化，字段名即为存储格式的契约。
package domain

import "strings"

// 游戏状态机: lobby --(startRound)--> playing --(accuse|guess|vote|timeout)--> roundEnd
const (
	StatusLobby    = "lobby"
	StatusPlaying  = "playing"
	StatusRoundEnd = "roundEnd"
)

// 指认类型
const (
	AccusationIndividual = "individual" // 当前提问者直接指认
	AccusationVote       = "vote"       // 多数投票指认
)

// Player 表示对局中的一名玩家。ID 由服务端生成，按名字重连时保持不变。
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Settings 是房主可配置的回合参数，仅在 lobby/roundEnd 状态下可修改，
// 在下一次 startRound 时才真正生效。
type Settings struct {
	MoleCount        int        `json:"moleCount"`                  // 卧底数量，限制在 [1,2]
	TimerMinutes     int        `json:"timerMinutes"`               // 回合时长(分钟)，限制在 [1,60]
	ShowMoleCount    bool       `json:"showMoleCount"`              // 是否向玩家公开卧底数量
	MolesCanVote     bool       `json:"molesCanVote"`               // 卧底是否允许参与投票
	EnabledPacks     []string   `json:"enabledPacks"`               // 启用的地点包
	EnabledLocations []string   `json:"enabledLocations,omitempty"` // 单独启用的地点名 (优先于地点包)
	CustomLocations  []Location `json:"customLocations,omitempty"`  // 玩家自定义地点
}

// DefaultSettings 返回新对局的初始配置。
func DefaultSettings() Settings {
	return Settings{
		MoleCount:     1,
		TimerMinutes:  8,
		ShowMoleCount: true,
		MolesCanVote:  false,
		EnabledPacks:  []string{"classic"},
	}
}

// Question 表示当前唯一一条进行中的提问/回答。
type Question struct {
	Text         string `json:"text"`
	AskerID      string `json:"askerId"`
	AskerName    string `json:"askerName"`
	AnswererID   string `json:"answererId"`
	AnswererName string `json:"answererName"`
	Answer       string `json:"answer,omitempty"`
}

// Accusation 记录终结回合的指认事件 (直接指认或投票多数)。
type Accusation struct {
	Type        string            `json:"type"`
	AccuserID   string            `json:"accuserId,omitempty"`
	AccuserName string            `json:"accuserName,omitempty"`
	AccusedID   string            `json:"accusedId"`
	AccusedName string            `json:"accusedName"`
	Votes       map[string]string `json:"votes,omitempty"`      // 投票指认时的完整票面
	VoteCounts  map[string]int    `json:"voteCounts,omitempty"` // 投票指认时的计票结果
}

// Round 表示一次完整的回合。每次 startRound 都会整体替换上一个 Round，
// 只有 RoundNumber 延续递增。
type Round struct {
	RoundNumber      int               `json:"roundNumber"`
	Location         *Location         `json:"location"`
	MoleIDs          []string          `json:"moleIds"`
	PlayerRoles      map[string]string `json:"playerRoles,omitempty"` // 非卧底玩家 ID -> 角色
	CurrentTurn      string            `json:"currentTurn"`           // 当前有提问权的玩家
	CurrentQuestion  *Question         `json:"currentQuestion,omitempty"`
	WaitingForAnswer string            `json:"waitingForAnswer,omitempty"` // 非空时禁止新提问
	EndTime          int64             `json:"endTime"`                    // epoch 毫秒
	Accusation       *Accusation       `json:"accusation,omitempty"`
	Votes            map[string]string `json:"votes,omitempty"` // 投票人 ID -> 被投玩家 ID
	GuessedLocation  string            `json:"guessedLocation,omitempty"`
	MoleWon          *bool             `json:"moleWon,omitempty"` // 终局时一次性写入
}

// IsMole 判断玩家是否是本回合的卧底。
func (r *Round) IsMole(playerID string) bool {
	for _, id := range r.MoleIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// RemoveMole 将玩家从卧底集合中移除，返回是否确实移除。
func (r *Round) RemoveMole(playerID string) bool {
	for i, id := range r.MoleIDs {
		if id == playerID {
			r.MoleIDs = append(r.MoleIDs[:i], r.MoleIDs[i+1:]...)
			return true
		}
	}
	return false
}

// Resolved 判断回合是否已经出现终局标记 (指认、猜地点或胜负已定)。
// 由于终局可能先被只读轮询发现、Status 尚未落库，判定是否"仍在进行"
// 时必须用它重新推导，而不能只看 Game.Status。
func (r *Round) Resolved() bool {
	return r.Accusation != nil || r.GuessedLocation != "" || r.MoleWon != nil
}

// Expired 判断回合计时是否已经到期。
func (r *Round) Expired(nowMillis int64) bool {
	return r.EndTime > 0 && nowMillis >= r.EndTime
}

// VoteCounts 汇总当前票面的计票结果。
func (r *Round) VoteCounts() map[string]int {
	counts := make(map[string]int, len(r.Votes))
	for _, accusedID := range r.Votes {
		counts[accusedID]++
	}
	return counts
}

// Game 是聚合根，通过 6 位大写字母数字的 code 唯一标识。
type Game struct {
	Code         string   `json:"code"`
	Status       string   `json:"status"`
	Players      []Player `json:"players"` // 有序: 下标 0 恒为房主
	Settings     Settings `json:"settings"`
	CurrentRound *Round   `json:"currentRound,omitempty"`
	CreatedAt    int64    `json:"createdAt"` // epoch 毫秒，供过期清理使用

	// Version 是持久化层的乐观并发令牌，不进入 JSON 文档本身。
	Version uint `json:"-"`
}

// HostID 返回当前房主 (下标 0) 的玩家 ID；没有玩家时返回空串。
// 房主离开后无需显式转移，新的下标 0 玩家自动获得房主权限。
func (g *Game) HostID() string {
	if len(g.Players) == 0 {
		return ""
	}
	return g.Players[0].ID
}

// Player 按 ID 查找玩家。
func (g *Game) Player(playerID string) (*Player, bool) {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return &g.Players[i], true
		}
	}
	return nil, false
}

// HasPlayer 判断玩家是否在对局中。
func (g *Game) HasPlayer(playerID string) bool {
	_, ok := g.Player(playerID)
	return ok
}

// PlayerByName 按名字查找玩家，忽略大小写。用于重连判定。
func (g *Game) PlayerByName(name string) (*Player, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for i := range g.Players {
		if strings.ToLower(g.Players[i].Name) == lower {
			return &g.Players[i], true
		}
	}
	return nil, false
}

// RemovePlayer 按 ID 移除玩家并保持其余玩家的顺序，返回 (原下标, 是否找到)。
func (g *Game) RemovePlayer(playerID string) (int, bool) {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			return i, true
		}
	}
	return -1, false
}

// NonMoleCount 返回当前非卧底玩家数，是投票多数的分母。
func (g *Game) NonMoleCount() int {
	if g.CurrentRound == nil {
		return len(g.Players)
	}
	return len(g.Players) - len(g.CurrentRound.MoleIDs)
}
