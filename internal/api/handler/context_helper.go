package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/thlhody/GraphicDepartmentv30-sub004/internal/dto"
	"github.com/thlhody/GraphicDepartmentv30-sub004/pkg/response"
)

// MustGetActor 从 Gin 上下文中安全提取当前操作者。
// 如果身份中间件未正确注入 actor_id / actor_role，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetActor(c *gin.Context) (dto.Actor, bool) {
	v, exists := c.Get("actor_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return dto.Actor{}, false
	}
	id, ok := v.(int)
	if !ok || id <= 0 {
		response.Unauthorized(c, 10002, "未认证")
		return dto.Actor{}, false
	}

	v, exists = c.Get("actor_role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return dto.Actor{}, false
	}
	role, ok := v.(string)
	if !ok || role == "" {
		response.Unauthorized(c, 10002, "未认证")
		return dto.Actor{}, false
	}

	return dto.Actor{UserID: id, Role: role}, true
}
