package services

import (
	portsrepo "github.com/resumeforge/resumeforge_backend/internal/core/ports/repositories"
	portssvc "github.com/resumeforge/resumeforge_backend/internal/core/ports/services"
	"github.com/resumeforge/resumeforge_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, mail portssvc.MailSenderSvcFacade) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Token = NewTokenService(cfg)
	container.User = NewUserService(repos.UserRepo)
	container.Mail = mail
	container.Auth = NewAuthService(repos.UserRepo, container.Token, mail)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}

// Compile-time interface checks.
var (
	_ portssvc.AuthSvcFacade               = (*authService)(nil)
	_ portssvc.TokenSvcFacade              = (*tokenService)(nil)
	_ portssvc.UserSvcFacade               = (*userService)(nil)
	_ portssvc.GoogleOAuthHandlerSvcFacade = (*googleOAuthHandlerService)(nil)
)
