package repositories

// RepositoryProvider aggregates the repositories required by the service layer.
type RepositoryProvider struct {
	UserRepo UserRepositoryFacade
}
