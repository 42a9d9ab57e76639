package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/repository"
)

// Shared in-memory fakes for the repository interfaces. The services only
// ever see the interfaces, so these stand in for the sqlite implementation
// and additionally record which calls were made — several tests assert that
// an unsatisfiable filter never reaches the article store at all.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// users

type fakeUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) addUser(username string) *model.User {
	f.nextID++
	u := &model.User{
		ID:       fmt.Sprintf("user-%d", f.nextID),
		Email:    username + "@example.com",
		Username: username,
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Email == user.Email || u.Username == user.Username {
			return apperror.Conflict("user with this email or username already exists")
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	result := *u
	return &result, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, user *model.User) error {
	existing, ok := f.users[user.ID]
	if !ok {
		return apperror.NotFound("user")
	}
	for _, u := range f.users {
		if u.ID == user.ID {
			continue
		}
		if u.Email == user.Email {
			return apperror.Conflict("email is already taken")
		}
		if u.Username == user.Username {
			return apperror.Conflict("username is already taken")
		}
	}
	user.UpdatedAt = time.Now().UTC()
	*existing = *user
	return nil
}

// ---------------------------------------------------------------------------
// follows

type fakeFollowRepo struct {
	edges map[string]bool
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{edges: make(map[string]bool)}
}

func edgeKey(followerID, followeeID string) string {
	return followerID + "|" + followeeID
}

func (f *fakeFollowRepo) AddFollow(_ context.Context, followerID, followeeID string) error {
	key := edgeKey(followerID, followeeID)
	if f.edges[key] {
		return apperror.Conflict("already following this profile")
	}
	f.edges[key] = true
	return nil
}

func (f *fakeFollowRepo) RemoveFollow(_ context.Context, followerID, followeeID string) (bool, error) {
	key := edgeKey(followerID, followeeID)
	if !f.edges[key] {
		return false, nil
	}
	delete(f.edges, key)
	return true, nil
}

func (f *fakeFollowRepo) IsFollowing(_ context.Context, followerID, followeeID string) (bool, error) {
	return f.edges[edgeKey(followerID, followeeID)], nil
}

func (f *fakeFollowRepo) FolloweeIDs(_ context.Context, followerID string) ([]string, error) {
	var ids []string
	for key := range f.edges {
		follower, followee, _ := strings.Cut(key, "|")
		if follower == followerID {
			ids = append(ids, followee)
		}
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// articles

type fakeArticleRepo struct {
	articles map[string]*model.Article
	users    *fakeUserRepo
	nextID   int

	listCalls  int
	lastFilter repository.ArticleFilter
	lastPage   repository.Page
}

func newFakeArticleRepo(users *fakeUserRepo) *fakeArticleRepo {
	return &fakeArticleRepo{
		articles: make(map[string]*model.Article),
		users:    users,
	}
}

func (f *fakeArticleRepo) CreateArticle(_ context.Context, article *model.Article) error {
	for _, a := range f.articles {
		if a.Slug == article.Slug {
			return apperror.Conflict("article with this slug already exists")
		}
	}
	f.nextID++
	article.ID = fmt.Sprintf("article-%d", f.nextID)
	now := time.Now().UTC()
	article.CreatedAt = now
	article.UpdatedAt = now
	stored := *article
	f.articles[article.ID] = &stored
	return nil
}

func (f *fakeArticleRepo) GetArticleBySlug(_ context.Context, slug string) (*model.Article, error) {
	for _, a := range f.articles {
		if a.Slug == slug {
			result := *a
			return &result, nil
		}
	}
	return nil, apperror.NotFound("article")
}

func (f *fakeArticleRepo) GetArticleView(_ context.Context, articleID, _ string) (*model.ArticleView, error) {
	a, ok := f.articles[articleID]
	if !ok {
		return nil, apperror.NotFound("article")
	}
	return f.viewOf(a), nil
}

func (f *fakeArticleRepo) viewOf(a *model.Article) *model.ArticleView {
	view := &model.ArticleView{
		Slug:           a.Slug,
		Title:          a.Title,
		Description:    a.Description,
		Body:           a.Body,
		TagList:        append([]string{}, a.TagList...),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		FavoritesCount: a.FavoritesCount,
	}
	if author, ok := f.users.users[a.AuthorID]; ok {
		view.Author = model.Profile{Username: author.Username, Bio: author.Bio, Image: author.Image}
	}
	return view
}

func (f *fakeArticleRepo) ListArticles(_ context.Context, filter repository.ArticleFilter, page repository.Page, _ string) ([]model.ArticleView, int, error) {
	f.listCalls++
	f.lastFilter = filter
	f.lastPage = page

	var views []model.ArticleView
	for _, a := range f.articles {
		if matchesFilter(a, filter) {
			views = append(views, *f.viewOf(a))
		}
	}
	return views, len(views), nil
}

func matchesFilter(a *model.Article, filter repository.ArticleFilter) bool {
	if filter.Tag != "" {
		found := false
		for _, tag := range a.TagList {
			if tag == filter.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.AuthorID != "" && a.AuthorID != filter.AuthorID {
		return false
	}
	if filter.AuthorIDs != nil && !containsString(filter.AuthorIDs, a.AuthorID) {
		return false
	}
	if filter.IDs != nil && !containsString(filter.IDs, a.ID) {
		return false
	}
	return true
}

func containsString(vals []string, want string) bool {
	for _, v := range vals {
		if v == want {
			return true
		}
	}
	return false
}

func (f *fakeArticleRepo) UpdateArticle(_ context.Context, article *model.Article) error {
	existing, ok := f.articles[article.ID]
	if !ok {
		return apperror.NotFound("article")
	}
	for _, a := range f.articles {
		if a.ID != article.ID && a.Slug == article.Slug {
			return apperror.Conflict("article with this slug already exists")
		}
	}
	article.UpdatedAt = time.Now().UTC()
	*existing = *article
	return nil
}

func (f *fakeArticleRepo) DeleteArticle(_ context.Context, id string) error {
	if _, ok := f.articles[id]; !ok {
		return apperror.NotFound("article")
	}
	delete(f.articles, id)
	return nil
}

func (f *fakeArticleRepo) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	for _, a := range f.articles {
		if a.Slug == slug && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// ---------------------------------------------------------------------------
// favorites

type fakeFavoriteRepo struct {
	pairs map[string]bool
	users *fakeUserRepo
}

func newFakeFavoriteRepo(users *fakeUserRepo) *fakeFavoriteRepo {
	return &fakeFavoriteRepo{pairs: make(map[string]bool), users: users}
}

func (f *fakeFavoriteRepo) AddFavorite(_ context.Context, userID, articleID string) error {
	key := edgeKey(userID, articleID)
	if f.pairs[key] {
		return apperror.Conflict("article already favorited")
	}
	f.pairs[key] = true
	return nil
}

func (f *fakeFavoriteRepo) RemoveFavorite(_ context.Context, userID, articleID string) error {
	key := edgeKey(userID, articleID)
	if !f.pairs[key] {
		return apperror.Internal("favorite delete affected no rows")
	}
	delete(f.pairs, key)
	return nil
}

func (f *fakeFavoriteRepo) FavoritedArticleIDs(_ context.Context, username string) ([]string, error) {
	var userID string
	for _, u := range f.users.users {
		if u.Username == username {
			userID = u.ID
			break
		}
	}
	if userID == "" {
		return nil, nil
	}
	var ids []string
	for key := range f.pairs {
		user, article, _ := strings.Cut(key, "|")
		if user == userID {
			ids = append(ids, article)
		}
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// comments

type fakeCommentRepo struct {
	comments []model.Comment
	users    *fakeUserRepo
	nextID   int
}

func newFakeCommentRepo(users *fakeUserRepo) *fakeCommentRepo {
	return &fakeCommentRepo{users: users}
}

func (f *fakeCommentRepo) CreateComment(_ context.Context, comment *model.Comment) error {
	f.nextID++
	comment.ID = fmt.Sprintf("comment-%d", f.nextID)
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeCommentRepo) ListComments(_ context.Context, articleID string) ([]model.CommentView, error) {
	views := []model.CommentView{}
	for _, c := range f.comments {
		if c.ArticleID != articleID {
			continue
		}
		view := model.CommentView{
			ID:        c.ID,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
		if author, ok := f.users.users[c.AuthorID]; ok {
			view.Author = model.Profile{Username: author.Username, Bio: author.Bio, Image: author.Image}
		}
		views = append(views, view)
	}
	return views, nil
}
