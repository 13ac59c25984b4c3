package cms

// productUrl / usageGuide / courseUrl は公開クエリに入れない
const productsQuery = `*[_type == "product"] | order(order asc) {
  _id,
  name,
  "slug": slug.current,
  description,
  icon,
  iconType,
  "categories": categories[]->{ _id, name, "slug": slug.current },
  price,
  originalPrice,
  isPaid,
  featured,
  demoUrl
}`

const productBySlugQuery = `*[_type == "product" && slug.current == $slug][0] {
  _id,
  name,
  "slug": slug.current,
  description,
  icon,
  iconType,
  platforms,
  price,
  originalPrice,
  isPaid,
  featured,
  demoUrl
}`

const coursesQuery = `*[_type == "course"] | order(order asc) {
  _id,
  title,
  "slug": slug.current,
  description,
  thumbnail,
  iconType,
  level,
  duration,
  lessonsCount,
  price,
  originalPrice,
  isPaid,
  featured
}`

const blogPostsQuery = `*[_type == "blogPost"] | order(publishedAt desc) {
  _id,
  title,
  "slug": slug.current,
  excerpt,
  thumbnail,
  category,
  author,
  publishedAt,
  readTime,
  featured
}`

const blogPostBySlugQuery = `*[_type == "blogPost" && slug.current == $slug][0] {
  _id,
  title,
  "slug": slug.current,
  excerpt,
  thumbnail,
  content,
  category,
  author,
  publishedAt,
  readTime,
  featured
}`

const siteSettingsQuery = `*[_type == "siteSettings"][0] {
  siteName,
  heroTitle,
  heroSubtitle,
  heroBadge,
  productsSubtitle,
  coursesSubtitle,
  blogSubtitle,
  aboutTitle,
  aboutContent,
  aboutAvatar,
  aboutName,
  aboutRole,
  stats,
  skills,
  email,
  phone,
  socialLinks
}`

// ここから下はバックエンド専用
const productSecretQuery = `*[_type == "product" && _id == $productId][0] {
  _id,
  name,
  productUrl,
  usageGuide
}`

const courseSecretQuery = `*[_type == "course" && _id == $courseId][0] {
  _id,
  title,
  courseUrl
}`
