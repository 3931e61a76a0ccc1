package service

import "errors"

var (
	ErrInternal            = errors.New("internal server error")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("no access")
	ErrNotMember           = errors.New("user is not an approved member of the community")
	ErrInviteExpired       = errors.New("invite link has expired")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUnsupportedMedia    = errors.New("file must be an image or a video")
	ErrMediaTooLarge       = errors.New("file is too large")
	ErrFailedToUploadMedia = errors.New("failed to upload media")
)
