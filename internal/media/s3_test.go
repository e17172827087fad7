package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeS3 struct {
	objects map[string][]byte
	put     []*s3.PutObjectInput
	deletes [][]string
	deleted []string

	putErr       error
	deleteErr    error
	deleteErrors []types.Error
	pageSize     int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), pageSize: 1000}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.put = append(f.put, in)
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	prefix := aws.ToString(in.Prefix)
	after := aws.ToString(in.ContinuationToken)

	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) && k > after {
			keys = append(keys, k)
		}
	}
	sortStrings(keys)

	out := &s3.ListObjectsV2Output{}
	if len(keys) > f.pageSize {
		keys = keys[:f.pageSize]
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[len(keys)-1])
	}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	if len(f.deleteErrors) > 0 {
		return &s3.DeleteObjectsOutput{Errors: f.deleteErrors}, nil
	}
	var batch []string
	for _, id := range in.Delete.Objects {
		batch = append(batch, aws.ToString(id.Key))
		delete(f.objects, aws.ToString(id.Key))
	}
	f.deletes = append(f.deletes, batch)
	return &s3.DeleteObjectsOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func TestS3Upload(t *testing.T) {
	client := newFakeS3()
	u := NewS3Uploader(client, "pictures", "https://cdn.example.com/")

	asset, err := u.Upload(context.Background(), File{Name: "Shoe.JPG", ContentType: "image/jpeg", Data: []byte("jpeg-bytes")}, "offers/o1")
	if err != nil {
		t.Fatalf("Upload() unexpected error: %v", err)
	}

	if !strings.HasPrefix(asset.PublicID, "offers/o1/") || !strings.HasSuffix(asset.PublicID, ".jpg") {
		t.Errorf("Upload() public_id = %q", asset.PublicID)
	}
	if asset.URL != "https://cdn.example.com/"+asset.PublicID {
		t.Errorf("Upload() url = %q", asset.URL)
	}
	if asset.Folder != "offers/o1" || asset.Format != "jpg" || asset.Bytes != 10 || asset.ContentType != "image/jpeg" {
		t.Errorf("Upload() asset = %+v", asset)
	}
	if len(client.put) != 1 || aws.ToString(client.put[0].Bucket) != "pictures" || aws.ToInt64(client.put[0].ContentLength) != 10 {
		t.Fatalf("PutObject calls = %+v", client.put)
	}
}

func TestS3UploadDefaultURLAndSniffing(t *testing.T) {
	client := newFakeS3()
	u := NewS3Uploader(client, "pictures", "")

	png := []byte("\x89PNG\r\n\x1a\n0000")
	asset, err := u.Upload(context.Background(), File{Name: "blob", Data: png}, "offers/o2")
	if err != nil {
		t.Fatalf("Upload() unexpected error: %v", err)
	}
	if asset.ContentType != "image/png" {
		t.Errorf("Upload() content type = %q, want image/png", asset.ContentType)
	}
	if !strings.HasPrefix(asset.URL, "https://pictures.s3.amazonaws.com/offers/o2/") {
		t.Errorf("Upload() url = %q", asset.URL)
	}
}

func TestS3UploadError(t *testing.T) {
	client := newFakeS3()
	client.putErr = errors.New("bucket unavailable")
	u := NewS3Uploader(client, "pictures", "")

	_, err := u.Upload(context.Background(), File{Name: "a.jpg", Data: []byte("x")}, "offers/o1")
	if err == nil || !strings.Contains(err.Error(), "bucket unavailable") {
		t.Fatalf("Upload() error = %v, want wrapped put error", err)
	}
}

func TestS3DeleteByPrefix(t *testing.T) {
	client := newFakeS3()
	client.pageSize = 2
	for _, k := range []string{"offers/o1/a.jpg", "offers/o1/b.jpg", "offers/o1/c.jpg", "offers/o10/keep.jpg", "offers/o2/keep.jpg"} {
		client.objects[k] = []byte("x")
	}
	u := NewS3Uploader(client, "pictures", "")

	if err := u.DeleteByPrefix(context.Background(), "offers/o1"); err != nil {
		t.Fatalf("DeleteByPrefix() unexpected error: %v", err)
	}

	if len(client.deletes) != 2 {
		t.Errorf("DeleteObjects called %d times, want 2 for paginated listing", len(client.deletes))
	}
	for _, k := range []string{"offers/o1/a.jpg", "offers/o1/b.jpg", "offers/o1/c.jpg"} {
		if _, ok := client.objects[k]; ok {
			t.Errorf("object %s still present", k)
		}
	}
	for _, k := range []string{"offers/o10/keep.jpg", "offers/o2/keep.jpg"} {
		if _, ok := client.objects[k]; !ok {
			t.Errorf("object %s outside the prefix was deleted", k)
		}
	}
}

func TestS3DeleteByPrefixReportsObjectErrors(t *testing.T) {
	client := newFakeS3()
	client.objects["offers/o1/a.jpg"] = []byte("x")
	client.deleteErrors = []types.Error{{Key: aws.String("offers/o1/a.jpg"), Message: aws.String("Access Denied")}}
	u := NewS3Uploader(client, "pictures", "")

	err := u.DeleteByPrefix(context.Background(), "offers/o1")
	if err == nil || !strings.Contains(err.Error(), "Access Denied") {
		t.Fatalf("DeleteByPrefix() error = %v, want per-object error", err)
	}
}

func TestS3DeleteFolder(t *testing.T) {
	client := newFakeS3()
	u := NewS3Uploader(client, "pictures", "")

	if err := u.DeleteFolder(context.Background(), "offers/o1/"); err != nil {
		t.Fatalf("DeleteFolder() unexpected error: %v", err)
	}
	if len(client.deleted) != 1 || client.deleted[0] != "offers/o1/" {
		t.Errorf("DeleteObject keys = %v, want [offers/o1/]", client.deleted)
	}
}
