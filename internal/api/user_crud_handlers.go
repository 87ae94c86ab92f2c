package api

import (
	"context"
	"mime/multipart"
	"net/http"

	"go-shop/internal/apperr"
	"go-shop/internal/media"
	"go-shop/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const userNotFound = "User not found"

// UserHandlers groups the user management endpoints.
type UserHandlers struct {
	Users    *user.Store
	Media    *media.Host
	MaxImage int64
	Log      logrus.FieldLogger
}

type CreateUserRequest struct {
	Name           string                `form:"name" json:"name" binding:"required,max=255"`
	Email          string                `form:"email" json:"email" binding:"required,email,max=255"`
	Password       string                `form:"password" json:"password" binding:"required,min=6"`
	Role           *user.Role            `form:"role_id" json:"role_id" binding:"omitnil,oneof=1 2 3"`
	ProfilePicture *multipart.FileHeader `form:"profile_picture" json:"-" swaggerignore:"true"`
}

type UpdateUserRequest struct {
	Name           *string               `form:"name" json:"name" binding:"omitnil,min=1,max=255"`
	Email          *string               `form:"email" json:"email" binding:"omitnil,email,max=255"`
	Password       *string               `form:"password" json:"password" binding:"omitnil,min=6"`
	ProfilePicture *multipart.FileHeader `form:"profile_picture" json:"-" swaggerignore:"true"`
}

type UpdateInfoRequest struct {
	Name           *string               `form:"name" json:"name" binding:"omitnil,min=1,max=255"`
	Email          *string               `form:"email" json:"email" binding:"omitnil,email,max=255"`
	ProfilePicture *multipart.FileHeader `form:"profile_picture" json:"-" swaggerignore:"true"`
}

type UpdateRoleRequest struct {
	Role *user.Role `json:"role_id" form:"role_id" binding:"required,oneof=1 2 3"`
}

type UpdatePasswordRequest struct {
	CurrentPassword         string `json:"current_password" form:"current_password" binding:"required"`
	NewPassword             string `json:"new_password" form:"new_password" binding:"required,min=6"`
	NewPasswordConfirmation string `json:"new_password_confirmation" form:"new_password_confirmation" binding:"required,eqfield=NewPassword"`
}

// checkEmail reports a taken email on v. exceptID is the user being edited.
func (h *UserHandlers) checkEmail(ctx context.Context, v *apperr.ValidationError, email *string, exceptID uint) error {
	if email == nil {
		return nil
	}
	taken, err := h.Users.EmailTaken(ctx, *email, exceptID)
	if err != nil {
		return err
	}
	if taken {
		v.Add("email", "The email has already been taken.")
	}
	return nil
}

// update runs the shared validate, upload, persist sequence of the user
// edit endpoints.
func (h *UserHandlers) update(c *gin.Context, id uint, ch user.Changes, picture *multipart.FileHeader) (*user.User, error) {
	ctx := c.Request.Context()
	if _, err := h.Users.GetByID(ctx, id); err != nil {
		return nil, err
	}
	v := apperr.NewValidation()
	if err := h.checkEmail(ctx, v, ch.Email, id); err != nil {
		return nil, err
	}
	img, err := optionalImage(v, "profile_picture", picture, h.MaxImage)
	if err != nil {
		return nil, err
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	var updated *user.User
	err = h.Media.Attach(ctx, img, func(url *string) error {
		if url != nil {
			ch.ProfilePicture = url
		}
		var err error
		updated, err = h.Users.Update(ctx, id, ch)
		return err
	})
	return updated, err
}

// List godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page  query  int  false  "Page number"
// @Success      200  {object}  listResponse
// @Router       /users [get]
func (h *UserHandlers) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		page := pageParam(c)
		users, meta, err := h.Users.List(c.Request.Context(), page)
		if err != nil {
			respondError(c, h.Log, err, "")
			return
		}
		c.JSON(http.StatusOK, listResponse{Message: "Users retrieved successfully", Data: users, Meta: meta})
	}
}

// Get godoc
// @Summary      Show a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "User ID"
// @Success      200  {object}  user.User
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandlers) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		u, err := h.Users.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// Create godoc
// @Summary      Create a user (admin)
// @Tags         users
// @Accept       mpfd,json
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  user.User
// @Failure      403  {object}  map[string]string
// @Failure      422  {object}  map[string]any
// @Router       /users [post]
func (h *UserHandlers) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest
		if err := bind(c, &req); err != nil {
			respondError(c, h.Log, err, "")
			return
		}
		ctx := c.Request.Context()
		v := apperr.NewValidation()
		if err := h.checkEmail(ctx, v, &req.Email, 0); err != nil {
			respondError(c, h.Log, err, "")
			return
		}
		img, err := optionalImage(v, "profile_picture", req.ProfilePicture, h.MaxImage)
		if err == nil {
			err = v.OrNil()
		}
		if err != nil {
			respondError(c, h.Log, err, "")
			return
		}

		hash, err := user.HashPassword(req.Password)
		if err != nil {
			respondError(c, h.Log, err, "")
			return
		}
		u := &user.User{Name: req.Name, Email: req.Email, PasswordHash: hash, Role: user.RoleUser}
		if req.Role != nil {
			u.Role = *req.Role
		}
		err = h.Media.Attach(ctx, img, func(url *string) error {
			u.ProfilePicture = url
			return h.Users.Create(ctx, u)
		})
		if err != nil {
			respondError(c, h.Log, err, "")
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

// Update godoc
// @Summary      Update a user
// @Tags         users
// @Accept       mpfd,json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "User ID"
// @Success      200  {object}  user.User
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]any
// @Router       /users/{id} [put]
func (h *UserHandlers) Update() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		var req UpdateUserRequest
		if err := bind(c, &req); err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		ch := user.Changes{Name: req.Name, Email: req.Email}
		if req.Password != nil {
			hash, err := user.HashPassword(*req.Password)
			if err != nil {
				respondError(c, h.Log, err, "")
				return
			}
			ch.PasswordHash = &hash
		}
		u, err := h.update(c, id, ch, req.ProfilePicture)
		if err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// UpdateRole godoc
// @Summary      Change a user's role (admin)
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                true  "User ID"
// @Param        request  body  UpdateRoleRequest  true  "New role"
// @Success      200  {object}  map[string]any
// @Router       /users/{id}/role [patch]
func (h *UserHandlers) UpdateRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		var req UpdateRoleRequest
		if err := bind(c, &req); err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		u, err := h.Users.Update(c.Request.Context(), id, user.Changes{Role: req.Role})
		if err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Role updated successfully", "user": u})
	}
}

// UpdateInfo godoc
// @Summary      Update name, email or profile picture
// @Tags         users
// @Accept       mpfd,json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "User ID"
// @Success      200  {object}  map[string]any
// @Router       /users/{id}/info [patch]
func (h *UserHandlers) UpdateInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		var req UpdateInfoRequest
		if err := bind(c, &req); err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		u, err := h.update(c, id, user.Changes{Name: req.Name, Email: req.Email}, req.ProfilePicture)
		if err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Information updated", "user": u})
	}
}

// UpdatePassword godoc
// @Summary      Change a password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                    true  "User ID"
// @Param        request  body  UpdatePasswordRequest  true  "Passwords"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /users/{id}/password [patch]
func (h *UserHandlers) UpdatePassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		var req UpdatePasswordRequest
		if err := bind(c, &req); err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		ctx := c.Request.Context()
		u, err := h.Users.GetByID(ctx, id)
		if err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		if err := user.CheckPassword(u.PasswordHash, req.CurrentPassword); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
			return
		}
		hash, err := user.HashPassword(req.NewPassword)
		if err == nil {
			_, err = h.Users.Update(ctx, id, user.Changes{PasswordHash: &hash})
		}
		if err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
	}
}

// Delete godoc
// @Summary      Delete a user and their comments (admin)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "User ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandlers) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err == nil {
			err = h.Users.Delete(c.Request.Context(), id)
		}
		if err != nil {
			respondError(c, h.Log, err, userNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}
