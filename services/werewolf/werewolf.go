package main

import (
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"

	"github.com/cuihairu/werewolf/services/werewolf/internal/config"
	"github.com/cuihairu/werewolf/services/werewolf/internal/handler"
	"github.com/cuihairu/werewolf/services/werewolf/internal/middleware"
	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
)

var configFile = flag.String("f", "etc/werewolf.yaml", "the config file")

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c, conf.UseEnv())

	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	ctx, err := svc.NewServiceContext(c)
	logx.Must(err)
	defer ctx.Close()
	server.Use(middleware.NewTracingMiddleware(ctx).Handle)
	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting werewolf server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
