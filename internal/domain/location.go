package domain

import "encoding/json"

// Location 表示一个秘密地点及其可分配的角色列表。
// 内部统一使用 {name, roles} 结构；早期存档中地点可能只是一个纯字符串，
// 仅在反序列化边界做兼容，核心模型不保留别名字段。
type Location struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
}

// UnmarshalJSON 兼容旧版纯字符串形式的地点记录。
func (l *Location) UnmarshalJSON(data []byte) error {
	// 旧格式: "Airplane"
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		l.Name = name
		l.Roles = nil
		return nil
	}
	// 新格式: {"name": "...", "roles": [...]}
	type plain Location // 避免递归调用 UnmarshalJSON
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Location(p)
	return nil
}
