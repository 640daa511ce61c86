package container

import (
	"time"

	app "sheet-scanner/internal/application"
	"sheet-scanner/internal/domain/port"
	"sheet-scanner/internal/infrastructure/artifact"
)

type Container struct {
	UserService  *app.UserService
	SheetService *app.SheetService
	Artifacts    port.ArtifactStore
}

func New(userRepo port.UserRepository, scanner port.SheetScanner, store port.ArtifactStore, scanTimeout time.Duration) *Container {
	userService := app.NewUserService(userRepo)
	sheetService := app.NewSheetService(scanner, store, newArtifactSink, scanTimeout)

	return &Container{
		UserService:  userService,
		SheetService: sheetService,
		Artifacts:    store,
	}
}

func newArtifactSink() port.ArtifactCollector {
	return artifact.NewMemorySink()
}
