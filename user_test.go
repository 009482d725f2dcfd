package bestbot_test

import (
	"fmt"
	"testing"

	"github.com/alexandre-normand/bestbot"
	"github.com/alexandre-normand/bestbot/config"
	"github.com/slack-go/slack"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type userInfoFinder struct {
	fail  bool
	loads int
}

func (u *userInfoFinder) GetUserInfo(userID string) (user *slack.User, err error) {
	u.loads++
	if u.fail {
		return nil, fmt.Errorf("Error loading user [%s]", userID)
	}

	return &slack.User{ID: userID, Name: "Daniel Quinn", RealName: "Daniel Quinn"}, nil
}

func nopLogger() bestbot.SLogger {
	return bestbot.NewSLogger(zap.NewNop().Sugar(), true)
}

func TestNewCachingUserInfoFinderWithInvalidSize(t *testing.T) {
	v := viper.New()
	v.Set(config.UserInfoCacheSizeKey, -1)

	_, err := bestbot.NewCachingUserInfoFinder(v, &userInfoFinder{}, nopLogger())
	assert.Error(t, err)
}

func TestGetUserWithCacheDisabled(t *testing.T) {
	v := viper.New()
	v.Set(config.UserInfoCacheSizeKey, 0)

	loader := userInfoFinder{}
	uf, err := bestbot.NewCachingUserInfoFinder(v, &loader, nopLogger())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		user, err := uf.GetUserInfo("little-blue")
		require.NoError(t, err)

		if assert.NotNil(t, user) {
			assert.Equal(t, slack.User{ID: "little-blue", Name: "Daniel Quinn", RealName: "Daniel Quinn"}, *user)
		}
	}

	assert.Equal(t, 2, loader.loads)
}

func TestGetUserWithCacheEnabled(t *testing.T) {
	v := viper.New()
	v.Set(config.UserInfoCacheSizeKey, 10)

	loader := userInfoFinder{}
	uf, err := bestbot.NewCachingUserInfoFinder(v, &loader, nopLogger())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		user, err := uf.GetUserInfo("little-blue")
		require.NoError(t, err)
		assert.Equal(t, "Daniel Quinn", user.Name)
	}

	_, err = uf.GetUserInfo("red-robin")
	require.NoError(t, err)

	assert.Equal(t, 2, loader.loads)
}

func TestGetUserFailToLoad(t *testing.T) {
	v := viper.New()
	v.Set(config.UserInfoCacheSizeKey, 1)

	loader := userInfoFinder{fail: true}
	uf, err := bestbot.NewCachingUserInfoFinder(v, &loader, nopLogger())
	require.NoError(t, err)

	_, err = uf.GetUserInfo("little-blue")
	assert.Error(t, err)

	// Failures aren't cached
	_, err = uf.GetUserInfo("little-blue")
	assert.Error(t, err)
	assert.Equal(t, 2, loader.loads)
}
