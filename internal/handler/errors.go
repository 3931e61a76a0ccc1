package handler

import (
	"errors"
	"net/http"

	"github.com/comuna-app/feed-service/internal/service"
)

var (
	errNotAuthorized        = errors.New("user is not authorized")
	errInvalidID            = errors.New("invalid ID")
	errInvalidCommunityID   = errors.New("invalid community ID")
	errInvalidPostID        = errors.New("invalid post ID")
	errInvalidUserID        = errors.New("invalid user ID")
	errStartAndEndMustBeInt = errors.New("start and end must be int")
	errLimitMustBeInt       = errors.New("limit must be int")
	errInvalidMemberStatus  = errors.New("status must be approved or pending")
	errMediaRequired        = errors.New("media file is required")
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrNotMember):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInviteExpired):
		return http.StatusGone
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, service.ErrUnsupportedMedia):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrMediaTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
