package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct{ name string }

func TestContainer_RegisterAndResolve(t *testing.T) {
	c := NewContainer()
	svc := &fakeService{name: "generation"}
	c.Register("generation", svc)
	c.Register("config", "value")

	assert.True(t, c.Has("generation"))
	assert.False(t, c.Has("missing"))
	assert.Nil(t, c.Get("missing"))
	assert.Equal(t, []string{"config", "generation"}, c.GetNames())

	got, err := Resolve[*fakeService](c, "generation")
	require.NoError(t, err)
	assert.Same(t, svc, got)

	_, err = Resolve[*fakeService](c, "config")
	assert.ErrorContains(t, err, "服务类型不匹配")

	_, err = Resolve[*fakeService](c, "missing")
	assert.ErrorContains(t, err, "服务未注册")
}

func TestGetContainer_IsSingleton(t *testing.T) {
	assert.Same(t, GetContainer(), GetContainer())
}
