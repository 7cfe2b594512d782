package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	middleware "okrproject/middlewares"
	"okrproject/models"
	service "okrproject/services"
	"okrproject/utils"

	"go.uber.org/zap"
)

const maxAvatarSize = 5 << 20

type AuthHandler struct {
	service service.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.service.Register(ctx, &req)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleDataResponse(w, "User registered successfully", res, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.service.Login(ctx, &req)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleDataResponse(w, "Login successful", res, http.StatusOK)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.service.Logout(ctx, middleware.PrincipalFromContext(r.Context())); err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleMessageResponse(w, "Logged out successfully", http.StatusOK)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := h.service.Me(ctx, middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleDataResponse(w, "User retrieved successfully", user, http.StatusOK)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := h.service.UpdateProfile(ctx, middleware.PrincipalFromContext(r.Context()), &req)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleDataResponse(w, "Profile updated successfully", user, http.StatusOK)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.service.ChangePassword(ctx, middleware.PrincipalFromContext(r.Context()), &req); err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleMessageResponse(w, "Password changed successfully", http.StatusOK)
}

func (h *AuthHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize+(1<<20))
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		utils.HandleMessageResponse(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		utils.HandleMessageResponse(w, "Failed to get avatar from form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxAvatarSize {
		utils.HandleMessageResponse(w, "File size too large (max 5MB)", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	user, err := h.service.UploadAvatar(ctx, middleware.PrincipalFromContext(r.Context()), header.Filename, file, contentType)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleDataResponse(w, "Avatar uploaded successfully", user, http.StatusOK)
}

func (h *AuthHandler) DownloadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.ParseObjectID(w, r, "id", "user")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	avatar, err := h.service.OpenAvatar(ctx, userID)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}
	defer avatar.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", avatar.Filename))
	w.Header().Set("Content-Type", avatar.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(avatar.Length, 10))

	// headers are already sent, a copy failure can only be logged
	if _, err := io.Copy(w, avatar); err != nil {
		h.log.Warn("avatar download interrupted", zap.String("user_id", userID.Hex()), zap.Error(err))
	}
}
