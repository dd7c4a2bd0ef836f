package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-console/internal/api/dto"
	"github.com/fieldops/field-console/internal/auth"
	"github.com/fieldops/field-console/internal/service"
)

// PermissionHandler exposes the permission catalogue and grant endpoints.
type PermissionHandler struct {
	permissions *service.PermissionService
}

// NewPermissionHandler constructs handler.
func NewPermissionHandler(permissions *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

// List handles GET /permissions.
func (h *PermissionHandler) List(c *fiber.Ctx) error {
	perms, err := h.permissions.ListPermissions(c.UserContext(), parseBoolQuery(c, "include_inactive", true))
	if err != nil {
		return err
	}
	resp := make([]dto.PermissionResponse, 0, len(perms))
	for i := range perms {
		resp = append(resp, permissionResponse(&perms[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Create handles POST /permissions.
func (h *PermissionHandler) Create(c *fiber.Ctx) error {
	var req dto.PermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	perm, err := h.permissions.CreatePermission(c.UserContext(), auth.PrincipalFromContext(c), permissionInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": permissionResponse(perm)})
}

// Update handles PUT /permissions/:id.
func (h *PermissionHandler) Update(c *fiber.Ctx) error {
	var req dto.PermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	perm, err := h.permissions.UpdatePermission(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"), permissionInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": permissionResponse(perm)})
}

// Delete handles DELETE /permissions/:id.
func (h *PermissionHandler) Delete(c *fiber.Ctx) error {
	if err := h.permissions.DeletePermission(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListTeamGrants handles GET /teams/:id/permissions.
func (h *PermissionHandler) ListTeamGrants(c *fiber.Ctx) error {
	grants, err := h.permissions.ListTeamGrants(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	resp := make([]dto.GrantResponse, 0, len(grants))
	for i := range grants {
		resp = append(resp, teamGrantResponse(&grants[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GrantTeam handles POST /teams/:id/permissions.
func (h *PermissionHandler) GrantTeam(c *fiber.Ctx) error {
	var req dto.GrantRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.PermissionID == "" {
		return fiber.NewError(http.StatusBadRequest, "permission_id required")
	}
	grant, err := h.permissions.GrantTeam(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"), req.PermissionID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": teamGrantResponse(grant)})
}

// RevokeTeam handles DELETE /teams/:id/permissions/:permissionId.
func (h *PermissionHandler) RevokeTeam(c *fiber.Ctx) error {
	if err := h.permissions.RevokeTeam(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"), c.Params("permissionId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListUserGrants handles GET /admin/users/:id/permissions.
func (h *PermissionHandler) ListUserGrants(c *fiber.Ctx) error {
	grants, err := h.permissions.ListUserGrants(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	resp := make([]dto.GrantResponse, 0, len(grants))
	for i := range grants {
		resp = append(resp, userGrantResponse(&grants[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GrantUser handles POST /admin/users/:id/permissions.
func (h *PermissionHandler) GrantUser(c *fiber.Ctx) error {
	var req dto.GrantRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.PermissionID == "" {
		return fiber.NewError(http.StatusBadRequest, "permission_id required")
	}
	grant, err := h.permissions.GrantUser(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"), req.PermissionID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userGrantResponse(grant)})
}

// RevokeUser handles DELETE /admin/users/:id/permissions/:permissionId.
func (h *PermissionHandler) RevokeUser(c *fiber.Ctx) error {
	if err := h.permissions.RevokeUser(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"), c.Params("permissionId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func permissionInput(req dto.PermissionRequest) service.PermissionInput {
	return service.PermissionInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		IsActive:    req.IsActive,
	}
}
