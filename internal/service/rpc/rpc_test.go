package rpc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/service/rpc"
	"github.com/oggyb/muzz-matching/internal/utils/pagination"
)

type sampleRequest struct {
	UserID uint64 `json:"user_id" validate:"required"`
	Folder string `json:"folder" validate:"omitempty,oneof=Inbox Outbox Unread"`
	rpc.Paging
}

func TestDecode(t *testing.T) {
	in, err := structpb.NewStruct(map[string]any{"user_id": 7, "folder": "Inbox", "page_size": 3})
	require.NoError(t, err)

	var req sampleRequest
	require.NoError(t, rpc.Decode(in, &req))
	assert.Equal(t, uint64(7), req.UserID)
	assert.Equal(t, "Inbox", req.Folder)
	assert.Equal(t, 3, req.PageSize)
}

func TestDecode_Invalid(t *testing.T) {
	missing, _ := structpb.NewStruct(map[string]any{"folder": "Inbox"})
	assert.ErrorIs(t, rpc.Decode(missing, &sampleRequest{}), svcErr.ErrInvalidArgument)

	badEnum, _ := structpb.NewStruct(map[string]any{"user_id": 1, "folder": "Spam"})
	assert.ErrorIs(t, rpc.Decode(badEnum, &sampleRequest{}), svcErr.ErrInvalidArgument)

	badType, _ := structpb.NewStruct(map[string]any{"user_id": "seven"})
	assert.ErrorIs(t, rpc.Decode(badType, &sampleRequest{}), svcErr.ErrInvalidArgument)

	assert.ErrorIs(t, rpc.Decode(nil, &sampleRequest{}), svcErr.ErrInvalidArgument)
}

func TestEncode(t *testing.T) {
	out, err := rpc.Encode(struct {
		Count  int64    `json:"count"`
		Labels []string `json:"labels"`
	}{Count: 3, Labels: []string{"a"}})
	require.NoError(t, err)

	assert.Equal(t, float64(3), out.Fields["count"].GetNumberValue())
	assert.Equal(t, "a", out.Fields["labels"].GetListValue().GetValues()[0].GetStringValue())
}

func TestPagingResolve(t *testing.T) {
	n, s, err := rpc.Paging{}.Resolve(10, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 10, s)

	n, s, err = rpc.Paging{PageNumber: 4, PageSize: 500}.Resolve(10, 50)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 50, s)

	// negatives are left for the core to reject
	n, _, err = rpc.Paging{PageNumber: -1}.Resolve(10, 50)
	require.NoError(t, err)
	assert.Equal(t, -1, n)

	tok, err := pagination.EncodeToken(pagination.Token{Page: 3, Size: 5})
	require.NoError(t, err)
	n, s, err = rpc.Paging{PageNumber: 1, PageToken: tok}.Resolve(10, 50)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 5, s)

	_, _, err = rpc.Paging{PageToken: "!!"}.Resolve(10, 50)
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)
}

func TestPageOf(t *testing.T) {
	p := pagination.NewPage([]int{1, 2}, 5, 1, 2)
	view := rpc.PageOf(p, func(i int) string { return string(rune('a' + i)) })

	assert.Equal(t, []string{"b", "c"}, view.Items)
	assert.Equal(t, 3, view.TotalPages)
	require.NotNil(t, view.NextPageToken)
}
