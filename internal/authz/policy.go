// Package authz is the central authorization policy. Every service calls
// Can before a mutating operation; the decision depends only on the
// actor's role, the resource kind and its owner.
//
// Two deliberate asymmetries are part of the observable contract:
//   - an image that exists but is not yours reads as NotFound to a plain
//     user, so mere existence never leaks through ownership checks;
//   - a comment you may not delete reads as a true Forbidden.
package authz

import (
	"github.com/merkulive/photoshare/database/models"
	"github.com/merkulive/photoshare/internal/errs"
)

// Actor 执行操作的一方
type Actor struct {
	ID            uint
	Role          models.Role
	Authenticated bool
}

// Anonymous 匿名访问者
func Anonymous() Actor {
	return Actor{}
}

// FromUser 从用户记录构造 Actor
func FromUser(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role, Authenticated: true}
}

// Action 操作类型
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Kind 资源类型
type Kind string

const (
	KindImage       Kind = "image"
	KindComment     Kind = "comment"
	KindTag         Kind = "tag"
	KindUserAccount Kind = "user_account" // 角色变更、封禁
	KindUserImages  Kind = "user_images"  // 按用户名列出他人图片的特权视图
)

// Resource 被操作的资源
type Resource struct {
	Kind    Kind
	OwnerID uint
}

// Can 判定 actor 是否可以对 resource 执行 action；允许时返回 nil，
// 否则返回错误分类（errs.ErrForbidden / errs.ErrNotFound /
// errs.ErrUnauthenticated）。
func Can(actor Actor, action Action, res Resource) error {
	// 读操作对所有人开放，特权视图除外
	if action == ActionRead && res.Kind != KindUserImages {
		return nil
	}

	if !actor.Authenticated {
		return errs.Unauthenticatedf("authentication required")
	}

	switch res.Kind {
	case KindImage:
		return canImage(actor, action, res)
	case KindComment:
		return canComment(actor, action, res)
	case KindTag:
		// 标签是共享的，当前策略下任何已认证调用者都可以改动
		return nil
	case KindUserAccount:
		if actor.Role != models.RoleAdmin {
			return errs.Forbiddenf("admin role required")
		}
		return nil
	case KindUserImages:
		if !actor.Role.AtLeast(models.RoleModerator) {
			return errs.Forbiddenf("moderator role required")
		}
		return nil
	default:
		return errs.Forbiddenf("unknown resource kind %q", res.Kind)
	}
}

// canImage 图片策略：创建对任何已认证用户开放；修改和删除要求
// 所有者或管理员。对普通用户而言"存在但不是你的"坍缩为 NotFound。
func canImage(actor Actor, action Action, res Resource) error {
	switch action {
	case ActionCreate:
		return nil
	case ActionUpdate, ActionDelete:
		if actor.ID == res.OwnerID || actor.Role == models.RoleAdmin {
			return nil
		}
		return errs.NotFoundf("image")
	default:
		return nil
	}
}

// canComment 评论策略：创建对任何已认证用户开放；编辑仅限作者本人；
// 删除仅限版主或管理员——作者身份本身不够。
func canComment(actor Actor, action Action, res Resource) error {
	switch action {
	case ActionCreate:
		return nil
	case ActionUpdate:
		if actor.ID == res.OwnerID {
			return nil
		}
		return errs.Forbiddenf("only the author can edit a comment")
	case ActionDelete:
		if actor.Role.AtLeast(models.RoleModerator) {
			return nil
		}
		return errs.Forbiddenf("moderator or admin role required to delete comments")
	default:
		return nil
	}
}
