package song

import (
	"github.com/smallbiznis/royalti/internal/song/repository"
	"github.com/smallbiznis/royalti/internal/song/service"
	"go.uber.org/fx"
)

var Module = fx.Module("song.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
