package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discussionblog/entities"
)

func sampleDiscussions() []entities.Discussion {
	body := "First line\n\nsecond line"
	return []entities.Discussion{
		{
			Number:    2,
			Title:     "Second post",
			CreatedAt: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
			Labels:    []entities.Label{{Name: "go", Color: "00add8"}, {Name: "graphql", Color: "e10098"}},
			Body:      &body,
		},
		{
			Number:    1,
			Title:     "First post",
			CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteDiscussions_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDiscussions(&buf, "text", sampleDiscussions()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "#2     2024-05-02  Second post  [go, graphql]", lines[0])
	assert.Equal(t, "       First line second line", lines[1])
	assert.Equal(t, "#1     2024-05-01  First post", lines[2])
}

func TestWriteDiscussions_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDiscussions(&buf, "json", sampleDiscussions()))

	var decoded []entities.Discussion
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, 2, decoded[0].Number)
	require.NotNil(t, decoded[0].Body)
	assert.Nil(t, decoded[1].Body)
	assert.NotContains(t, buf.String(), `"body": null`)
}

func TestWriteCategories(t *testing.T) {
	categories := []entities.Category{{ID: "DIC_blog", Name: "Blog"}}

	var text bytes.Buffer
	require.NoError(t, writeCategories(&text, "text", categories))
	assert.Contains(t, text.String(), "Blog")
	assert.Contains(t, text.String(), "DIC_blog")

	var js bytes.Buffer
	require.NoError(t, writeCategories(&js, "json", categories))
	assert.JSONEq(t, `[{"id":"DIC_blog","name":"Blog"}]`, js.String())
}

func TestBindFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("category", "", "")
	flags.Int("page-size", 100, "")
	require.NoError(t, flags.Parse([]string{"--category", "Blog", "--page-size", "25"}))

	v := viper.New()
	v.SetDefault("query.page_size", 100)
	require.NoError(t, bindFlags(v, flags))

	assert.Equal(t, "Blog", v.GetString("query.category"))
	assert.Equal(t, 25, v.GetInt("query.page_size"))
	// flags absent from the set are skipped
	assert.Equal(t, "", v.GetString("log.level"))
}
