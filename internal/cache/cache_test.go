package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryCache 测试内存缓存的基本功能
func TestMemoryCache(t *testing.T) {
	config := Config{
		Type:            "memory",
		DefaultTTL:      time.Second * 2,
		CleanupInterval: time.Second,
	}
	c, err := NewMemoryCache(config)
	require.NoError(t, err)

	require.NoError(t, c.Set("key1", "value1", 0))

	val, found, err := c.Get("key1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value1", val)

	_, found, err = c.Get("non-existent")
	assert.NoError(t, err)
	assert.False(t, found)

	// 过期
	require.NoError(t, c.Set("expire-soon", "temp-value", time.Millisecond*200))
	time.Sleep(time.Millisecond * 400)
	_, found, err = c.Get("expire-soon")
	assert.NoError(t, err)
	assert.False(t, found)

	// 删除
	require.NoError(t, c.Set("to-delete", "delete-me", 0))
	require.NoError(t, c.Delete("to-delete"))
	_, found, _ = c.Get("to-delete")
	assert.False(t, found)

	// 清空
	require.NoError(t, c.Set("key2", "value2", 0))
	require.NoError(t, c.Clear())
	_, found, _ = c.Get("key2")
	assert.False(t, found)
}

// TestRedisCache 测试Redis缓存，使用miniredis避免依赖外部服务
func TestRedisCache(t *testing.T) {
	server := miniredis.RunT(t)

	config := Config{
		Type:       "redis",
		RedisAddr:  server.Addr(),
		DefaultTTL: time.Second * 2,
	}
	c, err := NewRedisCache(config)
	require.NoError(t, err)

	require.NoError(t, c.Set("redis-key1", "redis-value1", time.Minute))

	val, found, err := c.Get("redis-key1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "redis-value1", val)

	_, found, err = c.Get("redis-non-existent")
	assert.NoError(t, err)
	assert.False(t, found)

	// 过期由miniredis的时钟模拟
	require.NoError(t, c.Set("redis-expire-soon", "temp-value", time.Second))
	server.FastForward(time.Second * 2)
	_, found, err = c.Get("redis-expire-soon")
	assert.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set("redis-to-delete", "delete-me", time.Minute))
	require.NoError(t, c.Delete("redis-to-delete"))
	_, found, _ = c.Get("redis-to-delete")
	assert.False(t, found)

	require.NoError(t, c.Set("redis-key2", "value2", time.Minute))
	require.NoError(t, c.Clear())
	_, found, _ = c.Get("redis-key2")
	assert.False(t, found)
}

// TestCacheFactory 测试缓存工厂函数
func TestCacheFactory(t *testing.T) {
	memCache, err := NewCache(DefaultConfig())
	assert.NoError(t, err)
	assert.NotNil(t, memCache)

	// 未知缓存类型回退为内存缓存
	unknownCache, err := NewCache(Config{Type: "unknown-type"})
	assert.NoError(t, err)
	assert.NotNil(t, unknownCache)
}

// TestGenerateCacheKey 测试缓存键生成
func TestGenerateCacheKey(t *testing.T) {
	assert.Equal(t, "prefix", GenerateCacheKey("prefix"))
	assert.Equal(t, "prefix:part1", GenerateCacheKey("prefix", "part1"))
	assert.Equal(t, "prefix:part1:part2:part3", GenerateCacheKey("prefix", "part1", "part2", "part3"))
}

// TestTranslationKey 测试翻译缓存键
func TestTranslationKey(t *testing.T) {
	base := TranslationKey("Hello", "French", "gpt-4o-mini", "sys", "user")

	// 相同参数生成相同键
	assert.Equal(t, base, TranslationKey("Hello", "French", "gpt-4o-mini", "sys", "user"))

	// 任一参数变化生成不同键
	assert.NotEqual(t, base, TranslationKey("Hello!", "French", "gpt-4o-mini", "sys", "user"))
	assert.NotEqual(t, base, TranslationKey("Hello", "German", "gpt-4o-mini", "sys", "user"))
	assert.NotEqual(t, base, TranslationKey("Hello", "French", "gpt-4o", "sys", "user"))
	assert.NotEqual(t, base, TranslationKey("Hello", "French", "gpt-4o-mini", "sys2", "user"))
}
