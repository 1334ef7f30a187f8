package catalog_test // 测试包

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuel-nelson/spyfall-game/internal/catalog"
	"github.com/samuel-nelson/spyfall-game/internal/domain"
)

func TestResolve_UnionOfEnabledPacks(t *testing.T) {
	// Arrange
	settings := domain.Settings{EnabledPacks: []string{"classic", "extended"}}

	// Act
	pool := catalog.Resolve(settings)

	// Assert: 并集应同时包含两个包的地点
	names := make(map[string]bool, len(pool))
	for _, loc := range pool {
		names[loc.Name] = true
	}
	assert.True(t, names["Airplane"], "应包含 classic 包的地点")
	assert.True(t, names["Zoo"], "应包含 extended 包的地点")
}

func TestResolve_CustomLocationsIncluded(t *testing.T) {
	// Arrange
	settings := domain.Settings{
		EnabledPacks:    []string{"classic"},
		CustomLocations: []domain.Location{{Name: "Moon Base", Roles: []string{"Commander", "Botanist"}}},
	}

	// Act
	pool := catalog.Resolve(settings)

	// Assert
	found := false
	for _, loc := range pool {
		if loc.Name == "Moon Base" {
			found = true
		}
	}
	assert.True(t, found, "自定义地点应进入抽取池")
}

func TestResolve_EnabledLocationsFilter(t *testing.T) {
	// Arrange: 单独启用列表是大小写不敏感的名字过滤
	settings := domain.Settings{
		EnabledPacks:     []string{"classic"},
		EnabledLocations: []string{"airplane", " Bank "},
	}

	// Act
	pool := catalog.Resolve(settings)

	// Assert
	require.Len(t, pool, 2)
	names := []string{pool[0].Name, pool[1].Name}
	assert.Contains(t, names, "Airplane")
	assert.Contains(t, names, "Bank")
}

func TestResolve_EmptyResultFallsBackToDefaultPack(t *testing.T) {
	// Arrange: 没有启用任何包，也没有自定义地点
	settings := domain.Settings{}

	// Act
	pool := catalog.Resolve(settings)

	// Assert: 回退到默认包，而不是空池
	assert.Equal(t, len(catalog.Resolve(domain.Settings{EnabledPacks: []string{catalog.DefaultPack}})), len(pool))
	assert.NotEmpty(t, pool)
}

func TestDraw_ReturnsMemberOfPool(t *testing.T) {
	// Arrange
	settings := domain.Settings{EnabledPacks: []string{"countries"}}
	pool := catalog.Resolve(settings)
	names := make(map[string]bool, len(pool))
	for _, loc := range pool {
		names[loc.Name] = true
	}

	// Act & Assert: 多次抽取都应落在启用集合内
	for i := 0; i < 20; i++ {
		drawn := catalog.Draw(settings)
		assert.True(t, names[drawn.Name], "抽取结果 %q 应属于启用集合", drawn.Name)
	}
}

func TestAssignRoles_EveryPlayerGetsARole(t *testing.T) {
	// Arrange
	location := domain.Location{Name: "Bank", Roles: []string{"Teller", "Customer", "Security Guard"}}
	playerIDs := []string{"p1", "p2", "p3"}

	// Act
	assigned := catalog.AssignRoles(location, playerIDs)

	// Assert: 每个玩家都有角色，且角色来自地点的角色列表
	require.Len(t, assigned, 3)
	for _, playerID := range playerIDs {
		role, ok := assigned[playerID]
		require.True(t, ok, "玩家 %s 应被分配角色", playerID)
		assert.Contains(t, location.Roles, role)
	}
}

func TestAssignRoles_MorePlayersThanRolesAllowsDuplicates(t *testing.T) {
	// Arrange: 玩家数超过角色数时按取模轮转，允许重复
	location := domain.Location{Name: "Tiny", Roles: []string{"A", "B"}}
	playerIDs := []string{"p1", "p2", "p3", "p4", "p5"}

	// Act
	assigned := catalog.AssignRoles(location, playerIDs)

	// Assert
	require.Len(t, assigned, 5)
	for _, role := range assigned {
		assert.Contains(t, location.Roles, role)
	}
}

func TestAssignRoles_NoRoles(t *testing.T) {
	// Act
	assigned := catalog.AssignRoles(domain.Location{Name: "Bare"}, []string{"p1"})

	// Assert: 没有角色列表时返回空映射而不是 panic
	assert.Empty(t, assigned)
}

func TestIsValidPack(t *testing.T) {
	assert.True(t, catalog.IsValidPack("classic"))
	assert.True(t, catalog.IsValidPack("extended"))
	assert.False(t, catalog.IsValidPack("nonsense"))
}
