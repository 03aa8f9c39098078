package catalog

import (
	"github.com/smallbiznis/royalti/internal/catalog/cache"
	"github.com/smallbiznis/royalti/internal/catalog/client"
	"github.com/smallbiznis/royalti/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(client.NewSpotify),
	fx.Provide(cache.Provide),
	fx.Provide(service.New),
)
