package redis

import "github.com/redis/go-redis/v9"

// writeRecordScript grava o registro da janela e a expiração numa única operação atômica,
// so a reader never sees a hash without its TTL.
//
// KEYS[1]: chave do registro (ex: "rate_limit:contact:192.168.1.1")
// ARGV[1]: count - requisições admitidas na janela atual
// ARGV[2]: reset_at - fim da janela em milissegundos Unix
// ARGV[3]: expire_at - instante de expiração da chave em milissegundos Unix
//
// Retorno: 1
var writeRecordScript = redis.NewScript(`
local key = KEYS[1]
local count = ARGV[1]
local reset_at = ARGV[2]
local expire_at = tonumber(ARGV[3])

redis.call('HSET', key, 'count', count, 'reset_at', reset_at)
redis.call('PEXPIREAT', key, expire_at)

return 1
`)
