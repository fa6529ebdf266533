// Package redis connects to Redis through go-redis and provides TenantCache,
// a tenant.Cache shared by every replica of the service.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	cache := redis.NewTenantCache(client, redis.WithKeyPrefix(cfg.KeyPrefix))
//	mw := tenant.Middleware(resolver, store, tenant.WithCache(cache))
//
// Read failures are logged and treated as misses. Write and delete failures
// are returned; the tenant middleware logs them and carries on.
package redis
