// Package catalog 维护静态的地点/角色库，并提供回合开始时的抽取逻辑。
// 地点按"地点包"分组，配置可以启用整包、单独启用某些地点，或追加自定义地点。
package catalog

import (
	"math/rand"
	"strings"

	"github.com/samuel-nelson/spyfall-game/internal/domain"
)

// DefaultPack 是解析结果为空时的兜底地点包。
const DefaultPack = "classic"

// countryRoles 是 countries 包共用的角色列表。
var countryRoles = []string{"Tourist", "Local", "Tour Guide", "Street Vendor", "Customs Officer"}

var packs = map[string][]domain.Location{
	"classic": {
		{Name: "Airplane", Roles: []string{"Pilot", "Passenger", "Flight Attendant", "Mechanic", "Air Marshal"}},
		{Name: "Bank", Roles: []string{"Teller", "Customer", "Security Guard", "Manager", "Robber"}},
		{Name: "Beach", Roles: []string{"Lifeguard", "Swimmer", "Beach Goer", "Ice Cream Vendor", "Photographer"}},
		{Name: "Casino", Roles: []string{"Dealer", "Gambler", "Security", "Bartender", "Manager"}},
		{Name: "Cathedral", Roles: []string{"Priest", "Worshipper", "Tourist", "Choir Member", "Janitor"}},
		{Name: "Circus Tent", Roles: []string{"Clown", "Acrobat", "Juggler", "Ringmaster", "Spectator"}},
		{Name: "Corporate Party", Roles: []string{"Manager", "Employee", "Intern", "CEO", "Entertainer"}},
		{Name: "Crusader Army", Roles: []string{"Knight", "Archer", "Monk", "Servant", "Spy"}},
		{Name: "Day Spa", Roles: []string{"Client", "Masseuse", "Receptionist", "Stylist", "Masseur"}},
		{Name: "Embassy", Roles: []string{"Ambassador", "Diplomat", "Security", "Government Official", "Refugee"}},
		{Name: "Hospital", Roles: []string{"Doctor", "Nurse", "Patient", "Surgeon", "Visitor"}},
		{Name: "Hotel", Roles: []string{"Guest", "Receptionist", "Bellhop", "Maid", "Manager"}},
		{Name: "Military Base", Roles: []string{"Soldier", "Officer", "Medic", "Engineer", "Spy"}},
		{Name: "Movie Studio", Roles: []string{"Director", "Actor", "Cameraman", "Stuntman", "Costume Designer"}},
		{Name: "Ocean Liner", Roles: []string{"Captain", "Passenger", "Bartender", "Mechanic", "Rich Passenger"}},
		{Name: "Passenger Train", Roles: []string{"Mechanic", "Passenger", "Conductor", "Restaurant Chef", "Border Patrol"}},
		{Name: "Pirate Ship", Roles: []string{"Captain", "Sailor", "Cook", "Slave", "Cannoneer"}},
		{Name: "Polar Station", Roles: []string{"Scientist", "Explorer", "Medic", "Geologist", "Meteorologist"}},
		{Name: "Police Station", Roles: []string{"Criminal", "Detective", "Journalist", "Lawyer", "Police Officer"}},
		{Name: "Restaurant", Roles: []string{"Waiter", "Customer", "Chef", "Critic", "Owner"}},
		{Name: "School", Roles: []string{"Teacher", "Student", "Principal", "Janitor", "Parent"}},
		{Name: "Service Station", Roles: []string{"Manager", "Tire Specialist", "Biker", "Car Owner", "Mechanic"}},
		{Name: "Space Station", Roles: []string{"Engineer", "Alien", "Pilot", "Commander", "Scientist"}},
		{Name: "Submarine", Roles: []string{"Captain", "Sailor", "Cook", "Radioman", "Mechanic"}},
		{Name: "Supermarket", Roles: []string{"Customer", "Cashier", "Butcher", "Janitor", "Security Guard"}},
		{Name: "Theater", Roles: []string{"Actor", "Audience Member", "Coat Check Lady", "Director", "Prompter"}},
		{Name: "University", Roles: []string{"Graduate Student", "Professor", "Dean", "Student", "Janitor"}},
		{Name: "World War II Squad", Roles: []string{"Soldier", "Medic", "Radioman", "Sniper", "Officer"}},
	},
	"extended": {
		{Name: "Amusement Park", Roles: []string{"Ride Operator", "Visitor", "Mascot", "Ticket Seller", "Maintenance Worker"}},
		{Name: "Aquarium", Roles: []string{"Marine Biologist", "Visitor", "Diver", "Gift Shop Clerk", "Feeder"}},
		{Name: "Art Museum", Roles: []string{"Curator", "Visitor", "Security Guard", "Restorer", "Art Thief"}},
		{Name: "Campground", Roles: []string{"Camper", "Park Ranger", "Scout Leader", "Hiker", "Wildlife Photographer"}},
		{Name: "Concert Hall", Roles: []string{"Conductor", "Musician", "Audience Member", "Sound Engineer", "Usher"}},
		{Name: "Gym", Roles: []string{"Personal Trainer", "Member", "Receptionist", "Bodybuilder", "Cleaner"}},
		{Name: "Library", Roles: []string{"Librarian", "Student", "Author", "Volunteer", "Night Guard"}},
		{Name: "Night Club", Roles: []string{"DJ", "Bouncer", "Bartender", "Dancer", "Regular"}},
		{Name: "Ski Resort", Roles: []string{"Ski Instructor", "Tourist", "Lift Operator", "Snowboarder", "Medic"}},
		{Name: "Subway", Roles: []string{"Driver", "Commuter", "Busker", "Ticket Inspector", "Cleaner"}},
		{Name: "Vineyard", Roles: []string{"Winemaker", "Picker", "Sommelier", "Tourist", "Owner"}},
		{Name: "Zoo", Roles: []string{"Zookeeper", "Visitor", "Veterinarian", "Photographer", "Food Vendor"}},
	},
	"countries": {
		{Name: "Brazil", Roles: countryRoles},
		{Name: "Canada", Roles: countryRoles},
		{Name: "Egypt", Roles: countryRoles},
		{Name: "France", Roles: countryRoles},
		{Name: "Germany", Roles: countryRoles},
		{Name: "India", Roles: countryRoles},
		{Name: "Italy", Roles: countryRoles},
		{Name: "Japan", Roles: countryRoles},
		{Name: "Mexico", Roles: countryRoles},
		{Name: "Norway", Roles: countryRoles},
		{Name: "South Korea", Roles: countryRoles},
		{Name: "Spain", Roles: countryRoles},
	},
}

// PackIDs 返回所有可用地点包的标识。
func PackIDs() []string {
	ids := make([]string, 0, len(packs))
	for id := range packs {
		ids = append(ids, id)
	}
	return ids
}

// IsValidPack 判断地点包标识是否存在。
func IsValidPack(id string) bool {
	_, ok := packs[id]
	return ok
}

// Resolve 根据配置解析出本回合可抽取的地点集合:
//  1. 配置了单独启用列表时，只保留名字命中的地点 (启用包 + 自定义地点范围内)；
//  2. 否则取启用包的并集加上自定义地点；
//  3. 结果为空时回退到默认包。
func Resolve(settings domain.Settings) []domain.Location {
	pool := make([]domain.Location, 0, 32)
	for _, packID := range settings.EnabledPacks {
		pool = append(pool, packs[packID]...)
	}
	for _, custom := range settings.CustomLocations {
		if strings.TrimSpace(custom.Name) != "" {
			pool = append(pool, custom)
		}
	}

	if len(settings.EnabledLocations) > 0 {
		enabled := make(map[string]bool, len(settings.EnabledLocations))
		for _, name := range settings.EnabledLocations {
			enabled[strings.ToLower(strings.TrimSpace(name))] = true
		}
		filtered := pool[:0]
		for _, loc := range pool {
			if enabled[strings.ToLower(loc.Name)] {
				filtered = append(filtered, loc)
			}
		}
		pool = filtered
	}

	if len(pool) == 0 {
		pool = append([]domain.Location(nil), packs[DefaultPack]...)
	}
	return pool
}

// Draw 从启用集合中均匀随机抽取一个地点。
func Draw(settings domain.Settings) domain.Location {
	pool := Resolve(settings)
	return pool[rand.Intn(len(pool))]
}

// AssignRoles 为非卧底玩家分配角色: 先对角色列表洗牌，再按下标取模
// 轮转分配，玩家多于角色时允许重复。地点没有角色列表时返回空映射。
func AssignRoles(location domain.Location, playerIDs []string) map[string]string {
	assigned := make(map[string]string, len(playerIDs))
	if len(location.Roles) == 0 {
		return assigned
	}

	shuffled := make([]string, len(location.Roles))
	copy(shuffled, location.Roles)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	for i, playerID := range playerIDs {
		assigned[playerID] = shuffled[i%len(shuffled)]
	}
	return assigned
}
